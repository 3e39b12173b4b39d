package decorate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClassSet(t *testing.T) {
	assert.Nil(t, ParseClassSet(""))
	assert.Nil(t, ParseClassSet("   "))
	assert.Equal(t, ClassSet{"a", "b"}, ParseClassSet(" a\tb a\n"))
}

func TestClassSetAddRemove(t *testing.T) {
	cs := ParseClassSet("nav-link invisible")

	cs = cs.Add("active")
	cs = cs.Add("active")
	assert.Equal(t, "nav-link invisible active", cs.String())

	cs = cs.Remove("invisible")
	cs = cs.Remove("invisible")
	assert.Equal(t, "nav-link active", cs.String())

	assert.Equal(t, "nav-link active", cs.Add("").String())
}

func TestClassSetRemoveDoesNotAlias(t *testing.T) {
	orig := ClassSet{"a", "b", "c"}
	out := orig.Remove("a")

	assert.Equal(t, ClassSet{"b", "c"}, out)
	assert.Equal(t, ClassSet{"a", "b", "c"}, orig)
}
