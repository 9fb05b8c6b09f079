package planfmt

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/opal-lang/ducky/core/invariant"
)

// canonicalPlan is the hashed part of a plan.
type canonicalPlan struct {
	Version uint8           `cbor:"1,keyasint"`
	Steps   []canonicalStep `cbor:"2,keyasint"`
}

type canonicalStep struct {
	Line      int      `cbor:"1,keyasint"`
	Verb      string   `cbor:"2,keyasint"`
	Raw       string   `cbor:"3,keyasint"`
	Text      string   `cbor:"4,keyasint,omitempty"`
	Millis    int      `cbor:"5,keyasint,omitempty"`
	Count     int      `cbor:"6,keyasint,omitempty"`
	Keys      []string `cbor:"7,keyasint,omitempty"`
	Target    int      `cbor:"8,keyasint"`
	SkipDelay bool     `cbor:"9,keyasint,omitempty"`
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	invariant.ExpectNoError(err, "building the canonical CBOR encoder")
	return em
}()

func (p *Plan) canonical() canonicalPlan {
	cp := canonicalPlan{Version: Version, Steps: make([]canonicalStep, len(p.Steps))}
	for i, s := range p.Steps {
		cp.Steps[i] = canonicalStep(s)
	}
	return cp
}

// MarshalBinary returns the deterministic CBOR encoding of the plan's steps.
// Equal plans always encode to identical bytes.
func (p *Plan) MarshalBinary() ([]byte, error) {
	data, err := encMode.Marshal(p.canonical())
	if err != nil {
		return nil, fmt.Errorf("encoding plan: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a plan written by MarshalBinary. The source name is not
// part of the encoding and comes back empty.
func Unmarshal(data []byte) (*Plan, error) {
	var cp canonicalPlan
	if err := cbor.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	if cp.Version != Version {
		return nil, fmt.Errorf("decoding plan: unsupported version %d (want %d)", cp.Version, Version)
	}
	p := &Plan{Steps: make([]Step, len(cp.Steps))}
	for i, s := range cp.Steps {
		p.Steps[i] = Step(s)
	}
	return p, nil
}

// Digest is the BLAKE2b-256 hash of the canonical encoding.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 12 hex digits, enough to tell plans apart in logs.
func (d Digest) Short() string {
	return d.String()[:12]
}

// Digest hashes the plan's canonical encoding.
func (p *Plan) Digest() (Digest, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return Digest{}, err
	}
	return blake2b.Sum256(data), nil
}
