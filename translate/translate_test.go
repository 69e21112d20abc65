package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("stack empty", From("stack empty"))
	assert.Equal("line 7 'jmp' bad", From("line %d '%v' %v", 7, "jmp", "bad"))
}
