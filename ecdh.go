package jose

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"
)

// Concat KDF, NIST SP 800-56A §5.8.1 with SHA-256, as profiled by
// RFC 7518 §4.6: the derived key is the leading bytes of
// SHA-256(counter ∥ Z ∥ AlgorithmID ∥ PartyUInfo ∥ PartyVInfo ∥ SuppPubInfo)
// iterated over a 32-bit big-endian counter starting at 1.
func concatKDF(z []byte, algID string, apu, apv []byte, keyBits int) []byte {
	otherInfo := make([]byte, 0, 4+len(algID)+4+len(apu)+4+len(apv)+4)
	otherInfo = appendLengthPrefixed(otherInfo, StringToBytes(algID))
	otherInfo = appendLengthPrefixed(otherInfo, apu)
	otherInfo = appendLengthPrefixed(otherInfo, apv)
	otherInfo = binary.BigEndian.AppendUint32(otherInfo, uint32(keyBits))

	keyLen := keyBits / 8
	out := make([]byte, 0, keyLen)
	var counter [4]byte
	for round := uint32(1); len(out) < keyLen; round++ {
		binary.BigEndian.PutUint32(counter[:], round)
		h := sha256.New()
		h.Write(counter[:])
		h.Write(z)
		h.Write(otherInfo)
		out = h.Sum(out)
	}
	return out[:keyLen]
}

func appendLengthPrefixed(dst, data []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(data)))
	return append(dst, data...)
}

// deriveECDHSecret computes the shared secret Z between a private and a
// public key on the same curve.
func deriveECDHSecret(private *ecdsa.PrivateKey, public *ecdsa.PublicKey) ([]byte, error) {
	priv, err := private.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	pub, err := public.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return priv.ECDH(pub)
}

// generateEphemeralKey builds a fresh key pair on the recipient's curve for
// one ECDH-ES operation.
func generateEphemeralKey(curve elliptic.Curve) (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(curve, rand.Reader)
}

// epkHeader is the "epk" header member: the ephemeral public key as a
// minimal EC JWK.
type epkHeader struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

func epkFromPublic(key *ecdsa.PublicKey) epkHeader {
	size := (key.Curve.Params().BitSize + 7) / 8
	return epkHeader{
		Kty: "EC",
		Crv: curveName(key.Curve),
		X:   Base64EncodeString(padCoordinate(key.X, size)),
		Y:   Base64EncodeString(padCoordinate(key.Y, size)),
	}
}

func (e *epkHeader) publicKey() (*ecdsa.PublicKey, error) {
	if e.Kty != "EC" {
		return nil, fmt.Errorf("%w: epk", ErrInvalidHeader)
	}
	curve := curveByName(e.Crv)
	if curve == nil {
		return nil, fmt.Errorf("%w: epk", ErrInvalidHeader)
	}
	x, err1 := Base64Decode(StringToBytes(e.X))
	y, err2 := Base64Decode(StringToBytes(e.Y))
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("%w: epk", ErrInvalidHeader)
	}
	return &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(x),
		Y:     new(big.Int).SetBytes(y),
	}, nil
}
