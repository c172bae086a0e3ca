package iccstream

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"seehuhn.de/go/icc"

	"github.com/deepteams/conform/colorenc"
)

// Summary describes a decoded profile header.
type Summary struct {
	Version         icc.Version
	Class           icc.ProfileClass
	ColorSpace      icc.ColorSpace
	PCS             icc.ColorSpace
	RenderingIntent icc.RenderingIntent
	Description     string   // en-US text of the desc tag, if present
	Tags            []string // tag signatures in sorted order
}

func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "version:    %v\n", s.Version)
	fmt.Fprintf(&b, "class:      %v\n", s.Class)
	fmt.Fprintf(&b, "colorspace: %v\n", s.ColorSpace)
	fmt.Fprintf(&b, "pcs:        %v\n", s.PCS)
	fmt.Fprintf(&b, "intent:     %v\n", s.RenderingIntent)
	if s.Description != "" {
		fmt.Fprintf(&b, "desc:       %s\n", s.Description)
	}
	fmt.Fprintf(&b, "tags:       %s\n", strings.Join(s.Tags, " "))
	return b.String()
}

var descTag = icc.TagType(0x64657363)

// Inspect decodes the header and tag table of a profile.
func Inspect(profile []byte) (*Summary, error) {
	if len(profile) == 0 {
		return nil, fmt.Errorf("%w: empty profile", ErrMalformedProfile)
	}
	p, err := icc.Decode(profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProfile, err)
	}
	s := &Summary{
		Version:         p.Version,
		Class:           p.Class,
		ColorSpace:      p.ColorSpace,
		PCS:             p.PCS,
		RenderingIntent: p.RenderingIntent,
	}
	for sig := range p.TagData {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(sig))
		s.Tags = append(s.Tags, string(b[:]))
	}
	slices.Sort(s.Tags)
	if tag, ok := p.TagData[descTag]; ok {
		if d, err := colorenc.DecodeDescription(tag); err == nil {
			s.Description = d
		}
	}
	return s, nil
}
