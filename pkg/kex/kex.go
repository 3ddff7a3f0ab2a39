// Package kex implements the ring key exchange: key generation,
// encapsulation and decapsulation over the butterfly transforms in ntt.
//
// The protocol is reproduced as defined, including two properties that keep
// the sender's and receiver's secrets from agreeing in general: the twiddle
// factors are not roots of unity, and Encapsulate multiplies a
// coefficient-form polynomial by a transform-form public key. No security
// is claimed.
package kex

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"rlwe-kex/pkg/encoding"
	"rlwe-kex/pkg/ntt"
	"rlwe-kex/pkg/params"
	"rlwe-kex/pkg/poly"
	"rlwe-kex/pkg/sampling"
)

// KeyPair is one party's key material. PrivateKey is in coefficient form
// and belongs to the generating party; PublicKey is in transform form.
type KeyPair struct {
	PrivateKey poly.Poly
	PublicKey  poly.Poly
}

// Public returns a copy of the public key suitable for handing to a peer.
func (kp *KeyPair) Public() poly.Poly {
	return kp.PublicKey.Clone()
}

// Destroy zeroes the private key. The key pair must not be used afterwards.
func (kp *KeyPair) Destroy() {
	kp.PrivateKey.Zero()
	kp.PrivateKey = nil
}

// Encapsulation is the sender's output: a ciphertext in transform form and
// the sender's shared secret, both derived from one ephemeral polynomial.
type Encapsulation struct {
	Ciphertext   poly.Poly
	SharedSecret poly.Poly
}

// Scheme runs the protocol for one parameter set and random source.
type Scheme struct {
	params params.Params
	engine *ntt.Engine
	src    sampling.Source
	log    *zerolog.Logger
}

// New returns a Scheme drawing coefficients from src. The engine's tables
// may be shared with other schemes. A nil log discards output.
func New(engine *ntt.Engine, src sampling.Source, log *zerolog.Logger) *Scheme {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Scheme{
		params: engine.Params(),
		engine: engine,
		src:    src,
		log:    log,
	}
}

// Params returns the scheme's ring parameters.
func (s *Scheme) Params() params.Params {
	return s.params
}

// GenerateKeyPair draws n coefficients for the private key and forward
// transforms a copy of it to form the public key.
func (s *Scheme) GenerateKeyPair() (*KeyPair, error) {
	sk, err := sampling.SampleUniform(s.src, s.params.N, s.params.Q)
	if err != nil {
		return nil, errors.Wrap(err, "sampling private key")
	}
	pk := sk.Clone()
	if err := s.engine.Forward(pk); err != nil {
		return nil, errors.Wrap(err, "transforming public key")
	}
	s.log.Debug().Int("n", s.params.N).Uint64("q", s.params.Q).Msg("generated key pair")
	return &KeyPair{PrivateKey: sk, PublicKey: pk}, nil
}

// Encapsulate draws an ephemeral polynomial r and returns Forward(r) as the
// ciphertext and r * publicKey (componentwise, r untransformed) as the
// sender's shared secret.
func (s *Scheme) Encapsulate(publicKey poly.Poly) (*Encapsulation, error) {
	if err := publicKey.Validate(s.params.N, s.params.Q); err != nil {
		return nil, errors.Wrap(err, "public key")
	}
	r, err := sampling.SampleUniform(s.src, s.params.N, s.params.Q)
	if err != nil {
		return nil, errors.Wrap(err, "sampling ephemeral polynomial")
	}
	ct := r.Clone()
	if err := s.engine.Forward(ct); err != nil {
		return nil, errors.Wrap(err, "transforming ciphertext")
	}
	secret := poly.New(s.params.N)
	if err := poly.MulCoeffs(r, publicKey, secret, s.params.Q); err != nil {
		return nil, err
	}
	r.Zero()
	s.log.Debug().Int("n", s.params.N).Uint64("q", s.params.Q).Msg("encapsulated")
	return &Encapsulation{Ciphertext: ct, SharedSecret: secret}, nil
}

// Decapsulate returns Backward(ciphertext * privateKey), the receiver's
// shared secret.
func (s *Scheme) Decapsulate(ciphertext, privateKey poly.Poly) (poly.Poly, error) {
	if err := ciphertext.Validate(s.params.N, s.params.Q); err != nil {
		return nil, errors.Wrap(err, "ciphertext")
	}
	if err := privateKey.Validate(s.params.N, s.params.Q); err != nil {
		return nil, errors.Wrap(err, "private key")
	}
	secret := poly.New(s.params.N)
	if err := poly.MulCoeffs(ciphertext, privateKey, secret, s.params.Q); err != nil {
		return nil, err
	}
	if err := s.engine.Backward(secret); err != nil {
		return nil, errors.Wrap(err, "transforming shared secret")
	}
	s.log.Debug().Int("n", s.params.N).Uint64("q", s.params.Q).Msg("decapsulated")
	return secret, nil
}

// Marshal packs p with the scheme's fixed coefficient width.
func (s *Scheme) Marshal(p poly.Poly) []byte {
	return encoding.PackPoly(p, s.params.Q)
}

// Unmarshal decodes one polynomial produced by Marshal.
func (s *Scheme) Unmarshal(bs []byte) (poly.Poly, error) {
	return encoding.UnpackPoly(bs, s.params.N, s.params.Q)
}
