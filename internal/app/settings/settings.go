/*
Package settings contains the client-side settings synchronization unit.

It defines the UserSettings record, the partial update (Patch) used to express
save intent, the RemoteClient contract the store talks through, and the Store
that owns the single current copy of a user's settings.
*/
package settings

import (
	"fmt"
	"sort"
)

// UserSettings is the user's profile as exchanged with the settings service.
// The credential fields carry change intent only and are never populated from the service.
type UserSettings struct {
	Avatar          string `json:"avatar"`
	Name            string `json:"name"`
	Lastname        string `json:"lastname"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	OldPassword     string `json:"oldPassword"`
	ConfirmPassword string `json:"confirmPassword"`
	DateOfBirth     string `json:"dateOfBirth"`
	Profession      string `json:"profession"`
}

// HasCredentialChange reports whether any credential field is set.
func (s UserSettings) HasCredentialChange() bool {
	return s.Password != "" || s.OldPassword != "" || s.ConfirmPassword != ""
}

// WithoutCredentials returns a copy with the credential fields cleared.
func (s UserSettings) WithoutCredentials() UserSettings {
	s.Password = ""
	s.OldPassword = ""
	s.ConfirmPassword = ""
	return s
}

// Patch is a partial UserSettings. Nil fields are not part of the patch.
type Patch struct {
	Avatar          *string `json:"avatar,omitempty"`
	Name            *string `json:"name,omitempty"`
	Lastname        *string `json:"lastname,omitempty"`
	Email           *string `json:"email,omitempty"`
	Password        *string `json:"password,omitempty"`
	OldPassword     *string `json:"oldPassword,omitempty"`
	ConfirmPassword *string `json:"confirmPassword,omitempty"`
	DateOfBirth     *string `json:"dateOfBirth,omitempty"`
	Profession      *string `json:"profession,omitempty"`
}

// String returns a pointer to v, for building patches inline.
func String(v string) *string {
	return &v
}

// fields maps JSON field names to the patch slots. Shared by Apply, IsEmpty and Set.
func (p *Patch) fields() map[string]**string {
	return map[string]**string{
		"avatar":          &p.Avatar,
		"name":            &p.Name,
		"lastname":        &p.Lastname,
		"email":           &p.Email,
		"password":        &p.Password,
		"oldPassword":     &p.OldPassword,
		"confirmPassword": &p.ConfirmPassword,
		"dateOfBirth":     &p.DateOfBirth,
		"profession":      &p.Profession,
	}
}

// FieldNames lists the settings field names accepted by Set, sorted.
func FieldNames() []string {
	var p Patch
	names := make([]string, 0, len(p.fields()))
	for name := range p.fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether no field is set.
func (p Patch) IsEmpty() bool {
	for _, slot := range p.fields() {
		if *slot != nil {
			return false
		}
	}
	return true
}

// Set assigns value to the field with the given JSON name.
func (p *Patch) Set(field, value string) error {
	slot, ok := p.fields()[field]
	if !ok {
		return fmt.Errorf("unknown settings field %q", field)
	}
	*slot = String(value)
	return nil
}

// Apply overlays the set fields of p onto base and returns the result.
func (p Patch) Apply(base UserSettings) UserSettings {
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}

	apply(&base.Avatar, p.Avatar)
	apply(&base.Name, p.Name)
	apply(&base.Lastname, p.Lastname)
	apply(&base.Email, p.Email)
	apply(&base.Password, p.Password)
	apply(&base.OldPassword, p.OldPassword)
	apply(&base.ConfirmPassword, p.ConfirmPassword)
	apply(&base.DateOfBirth, p.DateOfBirth)
	apply(&base.Profession, p.Profession)

	return base
}
