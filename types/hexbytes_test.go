package types

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHexBytes(t *testing.T) {
	c := qt.New(t)

	c.Run("Bytes", func(c *qt.C) {
		hb := HexBytes{0x01, 0x02, 0x03}
		out := (&hb).Bytes()
		c.Assert(out, qt.DeepEquals, []byte{0x01, 0x02, 0x03})
	})

	c.Run("String", func(c *qt.C) {
		testCases := []struct {
			name string
			in   HexBytes
			want string
		}{
			{name: "nil slice", in: nil, want: "0x"},
			{name: "empty", in: HexBytes{}, want: "0x"},
			{name: "non-empty", in: HexBytes{0x00, 0xAB, 0xCD}, want: "0x00abcd"},
		}
		for _, tc := range testCases {
			tc := tc
			c.Run(tc.name, func(c *qt.C) {
				c.Assert((&tc.in).String(), qt.Equals, tc.want)
			})
		}
	})

	c.Run("LeftPad", func(c *qt.C) {
		hb := HexBytes{0xAB, 0xCD}
		padded := hb.Hex32Bytes()
		c.Assert(len(padded), qt.Equals, 32)
		c.Assert(padded[30], qt.Equals, byte(0xAB))
		c.Assert(padded[31], qt.Equals, byte(0xCD))
	})

	c.Run("LeftTrim", func(c *qt.C) {
		hb := HexBytes{0x00, 0x00, 0xAB}
		c.Assert(hb.LeftTrim(), qt.DeepEquals, HexBytes{0xAB})
	})

	c.Run("Equal", func(c *qt.C) {
		c.Assert(HexBytes{1, 2}.Equal(HexBytes{1, 2}), qt.IsTrue)
		c.Assert(HexBytes{1, 2}.Equal(HexBytes{1, 3}), qt.IsFalse)
		c.Assert(HexBytes{1, 2}.Equal(HexBytes{1}), qt.IsFalse)
	})

	c.Run("JSON round-trip", func(c *qt.C) {
		hb := HexBytes{0xDE, 0xAD, 0xBE, 0xEF}
		b, err := json.Marshal(hb)
		c.Assert(err, qt.IsNil)
		c.Assert(string(b), qt.Equals, `"0xdeadbeef"`)

		var out HexBytes
		c.Assert(json.Unmarshal(b, &out), qt.IsNil)
		c.Assert(out, qt.DeepEquals, hb)

		var outNoPrefix HexBytes
		c.Assert(json.Unmarshal([]byte(`"deadbeef"`), &outNoPrefix), qt.IsNil)
		c.Assert(outNoPrefix, qt.DeepEquals, hb)
	})

	c.Run("HexStringToHexBytes", func(c *qt.C) {
		out, err := HexStringToHexBytes("0xdeadbeef")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.DeepEquals, HexBytes{0xDE, 0xAD, 0xBE, 0xEF})

		_, err = HexStringToHexBytes("not-hex")
		c.Assert(err, qt.ErrorMatches, "invalid hex string.*")
	})
}
