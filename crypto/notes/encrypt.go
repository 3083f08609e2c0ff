package notes

import (
	"encoding/binary"
	"io"
	"math/big"

	"golang.org/x/crypto/chacha20"

	"github.com/vocdoni/zvote/crypto/field"
	"github.com/vocdoni/zvote/crypto/group"
	"github.com/vocdoni/zvote/crypto/hash"
	"github.com/vocdoni/zvote/errs"
)

// PlaintextLen is the length of an encrypted note's plaintext: a version
// byte, the 11-byte diversifier, an 8-byte little-endian value and the
// 32-byte rseed. It matches Orchard's COMPACT_NOTE_SIZE and the wire width
// of ballot.Action.Enc.
const PlaintextLen = 1 + 11 + 8 + 32

const plaintextVersion = 0x02

var (
	kdfPerson = person16("Zcash_OrchardKdf")
)

// EncryptedOutput is the Epk/Enc pair a ballot Action publishes for its
// output note: an ephemeral public key and the note plaintext enciphered
// under the shared secret it and the recipient's incoming viewing key
// derive. There is no Sinsemilla/ChaCha20Poly1305 note-encryption library
// in the retrieved pack, so this implements the same shape (ECDH shared
// secret, a personalized-hash KDF, a stream cipher over a fixed-width
// plaintext) using golang.org/x/crypto/chacha20, already one of the
// teacher's dependencies via its wider x/crypto use. Real Orchard encrypts
// under ChaCha20-Poly1305 with an authentication tag; compact blocks (the
// format crypto/notes trial-decrypts from in this system, see ingest/)
// never carry that tag either, so trial decryption here, like real
// lightwalletd clients, recognizes a successful decryption by recomputing
// the note commitment and comparing it to the Action's published cmx
// rather than by checking a MAC.
type EncryptedOutput struct {
	Epk [32]byte
	Enc [PlaintextLen]byte
}

// Encrypt builds the Epk/Enc pair for note addressed to recipient, using
// rng for the ephemeral key.
func Encrypt(rng io.Reader, note Note, recipient RawAddress) (EncryptedOutput, error) {
	pkd, ok := pkdOf(recipient)
	if !ok {
		return EncryptedOutput{}, errs.New(errs.CryptoFail, "notes: recipient transmission key is not on curve")
	}
	esk, err := randFq(rng)
	if err != nil {
		return EncryptedOutput{}, errs.Wrap(errs.Io, "notes: reading ephemeral randomness failed", err)
	}
	epkPoint := group.Generator().ScalarMul(esk)
	shared := pkd.ScalarMul(esk)
	key := kdf(shared, epkPoint)

	plaintext := encodePlaintext(recipient, note.Value, note.Rseed)
	ciphertext, err := chachaXor(key, plaintext)
	if err != nil {
		return EncryptedOutput{}, errs.Wrap(errs.CryptoFail, "notes: stream cipher init failed", err)
	}

	var out EncryptedOutput
	out.Epk = epkPoint.Bytes()
	copy(out.Enc[:], ciphertext)
	return out, nil
}

// TrialDecrypt attempts to recover the note enciphered in enc under epk,
// using ivk. rho is the action's published nullifier field (reused here
// as the candidate note's Rho, since that's what the action's own
// encryption committed to) and expectedCmx is the action's published cmx.
// Decryption is considered successful only when the recovered note's own
// commitment matches expectedCmx — see EncryptedOutput's doc comment.
func TrialDecrypt(ivk field.Fq, epk [32]byte, enc [PlaintextLen]byte, rho field.Fp, expectedCmx field.Fp) (Note, bool) {
	epkPoint, ok := group.FromBytes(epk[:])
	if !ok {
		return Note{}, false
	}
	shared := epkPoint.ScalarMul(ivk)
	key := kdf(shared, epkPoint)

	plaintext, err := chachaXor(key, enc[:])
	if err != nil {
		return Note{}, false
	}
	if len(plaintext) != PlaintextLen || plaintext[0] != plaintextVersion {
		return Note{}, false
	}

	var recipient RawAddress
	copy(recipient[:11], plaintext[1:12])
	pkd := group.Generator().ScalarMul(ivk)
	pkdBytes := pkd.Bytes()
	copy(recipient[11:], pkdBytes[:])

	value := binary.LittleEndian.Uint64(plaintext[12:20])
	var rseed [32]byte
	copy(rseed[:], plaintext[20:52])

	n := Note{Recipient: recipient, Value: value, Rho: rho, Rseed: rseed}
	if !n.Commitment().Equal(expectedCmx) {
		return Note{}, false
	}
	return n, true
}

func encodePlaintext(recipient RawAddress, value uint64, rseed [32]byte) []byte {
	buf := make([]byte, 0, PlaintextLen)
	buf = append(buf, plaintextVersion)
	buf = append(buf, recipient[:11]...)
	var vbuf [8]byte
	binary.LittleEndian.PutUint64(vbuf[:], value)
	buf = append(buf, vbuf[:]...)
	buf = append(buf, rseed[:]...)
	return buf
}

func kdf(shared, epk group.Point) []byte {
	sharedBytes := shared.Bytes()
	epkBytes := epk.Bytes()
	buf := make([]byte, 0, 64)
	buf = append(buf, sharedBytes[:]...)
	buf = append(buf, epkBytes[:]...)
	digest := hash.Personalized(kdfPerson, buf)
	return digest[:]
}

// chachaXor enciphers (or deciphers, being a stream cipher) data under key
// with an all-zero nonce. The key is derived fresh per message from a
// one-time ECDH shared secret, so nonce reuse never occurs under a fixed
// key.
func chachaXor(key []byte, data []byte) ([]byte, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out, nil
}

func randFq(rng io.Reader) (field.Fq, error) {
	var buf [32]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return field.Fq{}, err
	}
	return field.NewFq(new(big.Int).SetBytes(buf[:])), nil
}
