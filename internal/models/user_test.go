package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneDeepCopiesExtraValues(t *testing.T) {
	bio := "original"
	u := &User{
		Username: "tester",
		Metadata: &Metadata{
			Bio: &bio,
			Extra: map[string]interface{}{
				"favorites": []string{"The Raven", "We Real Cool"},
				"tags":      []interface{}{"a", "b"},
				"nested":    map[string]interface{}{"k": "v"},
			},
		},
	}

	cp := u.Clone()

	// mutating the clone must not reach back into the source
	cp.Metadata.Extra["favorites"].([]string)[0] = "changed"
	cp.Metadata.Extra["tags"].([]interface{})[0] = "changed"
	cp.Metadata.Extra["nested"].(map[string]interface{})["k"] = "changed"

	require.Equal(t, "The Raven", u.Metadata.Extra["favorites"].([]string)[0])
	require.Equal(t, "a", u.Metadata.Extra["tags"].([]interface{})[0])
	require.Equal(t, "v", u.Metadata.Extra["nested"].(map[string]interface{})["k"])
}

func TestCloneNil(t *testing.T) {
	var u *User
	require.Nil(t, u.Clone())
}
