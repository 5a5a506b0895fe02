package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "German", LanguageName("de"))
	assert.Equal(t, "Spanish", LanguageName("es"))
	assert.Equal(t, "not a tag!", LanguageName("not a tag!"))
}
