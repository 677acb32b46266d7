package models

import "time"

// Metadata holds the profile fields delivered by the Layer8 identity
// provider plus locally maintained extras (profile picture key). Pointer
// fields distinguish "absent from a partial update" from "set to zero".
type Metadata struct {
	EmailVerified  *bool   `bson:"emailVerified,omitempty" json:"email_verified,omitempty"`
	Country        *string `bson:"country,omitempty" json:"country,omitempty"`
	DisplayName    *string `bson:"displayName,omitempty" json:"display_name,omitempty"`
	Color          *string `bson:"color,omitempty" json:"color,omitempty"`
	Bio            *string `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePicture *string `bson:"profilePicture,omitempty" json:"profile_picture,omitempty"`

	// Extra carries provider fields we do not model explicitly.
	Extra map[string]interface{} `bson:"extra,omitempty" json:"extra,omitempty"`
}

// Merge applies every field present on p onto m. Absent (nil) fields leave
// the existing values untouched.
func (m *Metadata) Merge(p Metadata) {
	if p.EmailVerified != nil {
		m.EmailVerified = p.EmailVerified
	}
	if p.Country != nil {
		m.Country = p.Country
	}
	if p.DisplayName != nil {
		m.DisplayName = p.DisplayName
	}
	if p.Color != nil {
		m.Color = p.Color
	}
	if p.Bio != nil {
		m.Bio = p.Bio
	}
	if p.ProfilePicture != nil {
		m.ProfilePicture = p.ProfilePicture
	}
	for k, v := range p.Extra {
		if m.Extra == nil {
			m.Extra = map[string]interface{}{}
		}
		m.Extra[k] = v
	}
}

// User is an application user. Username is the unique key and immutable
// after registration. PasswordHash is a bcrypt digest, never the plaintext.
type User struct {
	Username     string    `bson:"_id" json:"username"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Metadata     *Metadata `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Clone returns a deep copy so callers can hand out records without
// exposing store-internal state to concurrent mutation.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.Metadata != nil {
		md := *u.Metadata
		if u.Metadata.Extra != nil {
			md.Extra = make(map[string]interface{}, len(u.Metadata.Extra))
			for k, v := range u.Metadata.Extra {
				md.Extra[k] = cloneExtraValue(v)
			}
		}
		cp.Metadata = &md
	}
	return &cp
}

// cloneExtraValue deep-copies the container shapes Extra can carry (JSON
// maps and slices, plus []string from fixtures) so a cloned record never
// aliases store-internal state.
func cloneExtraValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, e := range vv {
			m[k] = cloneExtraValue(e)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(vv))
		for i, e := range vv {
			s[i] = cloneExtraValue(e)
		}
		return s
	case []string:
		s := make([]string, len(vv))
		copy(s, vv)
		return s
	default:
		return v
	}
}
