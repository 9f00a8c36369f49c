package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHuman(t *testing.T) {
	cases := map[int64]string{
		0:             "0 B",
		1023:          "1023 B",
		1024:          "1.00 KB",
		1536:          "1.50 KB",
		5 << 20:       "5.00 MB",
		3 << 30:       "3.00 GB",
		(1 << 40) * 2: "2.00 TB",
	}

	for in, want := range cases {
		assert.Equal(t, want, Human(in), "Human(%d)", in)
	}
}
