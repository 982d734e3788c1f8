package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"usersettings/internal/app/remote"
	"usersettings/internal/app/settings"
)

type command struct {
	client  *remote.Client
	timeout time.Duration
	out     io.Writer
}

type authFunc func(ctx context.Context, email, password string) (remote.Session, error)

func (c *command) authenticate(ctx context.Context, args []string, auth authFunc) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <email> <password>, got %d arguments", len(args))
	}

	session, err := auth(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.out, session.Token)
	return err
}

// openStore creates a store and waits for its initial load.
func (c *command) openStore(ctx context.Context) (*settings.Store, error) {
	store := settings.New(c.client, settings.WithRequestTimeout(c.timeout))

	if err := store.WaitReady(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

func (c *command) show(ctx context.Context) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	return c.print(store.Settings())
}

func (c *command) set(ctx context.Context, args []string) error {
	patch, err := parseAssignments(args)
	if err != nil {
		return err
	}

	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	store.SetSettings(patch.Apply(store.Settings()))

	if err := wait(ctx, store.SaveSettings(settings.Patch{})); err != nil {
		return err
	}

	return c.print(store.Settings())
}

func (c *command) avatar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected <file>, got %d arguments", len(args))
	}

	file, err := settings.LoadAvatarFile(args[0])
	if err != nil {
		return err
	}

	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := wait(ctx, store.UploadAvatar(file)); err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.out, store.Settings().Avatar)
	return err
}

func (c *command) watch(ctx context.Context) error {
	return c.client.Watch(ctx, func(s settings.UserSettings) {
		if err := c.print(s); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	})
}

func (c *command) print(s settings.UserSettings) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(s.WithoutCredentials())
}

func wait(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parseAssignments turns field=value arguments into a Patch.
func parseAssignments(args []string) (settings.Patch, error) {
	var patch settings.Patch

	if len(args) == 0 {
		return patch, fmt.Errorf("expected field=value arguments; fields: %s", strings.Join(settings.FieldNames(), ", "))
	}

	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return settings.Patch{}, fmt.Errorf("invalid assignment %q, want field=value", arg)
		}

		if err := patch.Set(field, value); err != nil {
			return settings.Patch{}, err
		}
	}

	return patch, nil
}
