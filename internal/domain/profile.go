package domain

import "fmt"

const (
	RoleStudent    = "Student"
	RoleInstructor = "Instructor"
)

// Profile is the open user record returned by login: name, email, role,
// profile_info, user_id and the echoed access/refresh tokens.
type Profile map[string]any

func (p Profile) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (p Profile) Name() string        { return p.String("name") }
func (p Profile) Email() string       { return p.String("email") }
func (p Profile) Role() string        { return p.String("role") }
func (p Profile) ProfileInfo() string { return p.String("profile_info") }
func (p Profile) AccessToken() string { return p.String("access") }
func (p Profile) RefreshToken() string {
	return p.String("refresh")
}

func (p Profile) IsInstructor() bool {
	return p.Role() == RoleInstructor
}

// Clone returns a shallow copy so readers cannot mutate session state.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
