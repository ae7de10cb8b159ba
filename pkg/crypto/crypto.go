// Package crypto implements the optional per-channel encryption handler
// (component C3): AES-192 in ECB mode, chained in a custom CBC-like scheme
// with a random-prefixed, rolling-counter PDU header.
//
// Grounded on original_source/satel_integra_api/channel.py
// (IntegraChannel.EncryptionHandler).
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"sync/atomic"
)

const blockLen = 16

// ErrInvalidKey is returned by Decode when the PDU header's rolling id does
// not match what this handler expects, per the invariant in §3: a mismatch
// is fatal for the channel (InvalidEncryptionKey).
var ErrInvalidKey = errors.New("crypto: pdu id_s mismatch, invalid encryption key or desynced channel")

// IDAllocator hands out the per-handler starting id_s, replacing the
// reference implementation's process-global counter (§9: inject via a
// per-process context object so tests can substitute a deterministic
// counter instead of relying on package-level mutable state).
type IDAllocator struct {
	next uint32
}

// Next returns the next id, wrapping modulo 256 (id_s/id_r are single
// bytes on the wire).
func (a *IDAllocator) Next() uint8 {
	return uint8(atomic.AddUint32(&a.next, 1) - 1)
}

// DefaultIDAllocator is used when NewHandler is not given one explicitly.
var DefaultIDAllocator = &IDAllocator{}

// Handler implements the encrypt/decrypt and PDU framing described in §4.2.
// A Handler is not safe for concurrent use; the channel already serializes
// writes and has a single reader goroutine.
type Handler struct {
	cipher cipher.Block

	rollingCounter uint16
	idS            uint8
	idR            uint8
}

// deriveKey pads key (ASCII, up to 12 bytes) with spaces to 12 bytes, then
// doubles it to a 24-byte AES-192 key, per the panel manual's scheme.
func deriveKey(key string) []byte {
	kb := []byte(key)
	out := make([]byte, 24)
	for i := 0; i < 12; i++ {
		b := byte(0x20)
		if i < len(kb) {
			b = kb[i]
		}
		out[i] = b
		out[i+12] = b
	}
	return out
}

// NewHandler constructs a Handler for integrationKey. An empty key means
// encryption is not engaged; callers should treat a nil, nil return as
// "send/receive frames in the clear".
func NewHandler(integrationKey string, alloc *IDAllocator) (*Handler, error) {
	if integrationKey == "" {
		return nil, nil
	}
	if alloc == nil {
		alloc = DefaultIDAllocator
	}
	block, err := aes.NewCipher(deriveKey(integrationKey))
	if err != nil {
		return nil, err
	}
	return &Handler{cipher: block, idS: alloc.Next()}, nil
}

func xor(dst, a, b []byte) []byte {
	for i := range a {
		dst[i] = a[i] ^ b[i]
	}
	return dst
}

// iv derives the initial chaining value: AES-encrypt an all-zero block.
func (h *Handler) iv() []byte {
	zero := make([]byte, blockLen)
	cv := make([]byte, blockLen)
	h.cipher.Encrypt(cv, zero)
	return cv
}

func blocks(data []byte, size int) [][]byte {
	var out [][]byte
	for i := 0; i < len(data); i += size {
		end := i + size
		if end > len(data) {
			end = len(data)
		}
		out = append(out, data[i:end])
	}
	return out
}

// encryptBlocks implements §4.2's send-side chaining, including the
// short-final-block "ciphertext stealing" behavior.
func (h *Handler) encryptBlocks(data []byte) []byte {
	if len(data) < blockLen {
		padded := make([]byte, blockLen)
		copy(padded, data)
		data = padded
	}
	cv := h.iv()
	out := make([]byte, 0, len(data))
	for _, block := range blocks(data, blockLen) {
		if len(block) == blockLen {
			p := xor(make([]byte, blockLen), block, cv)
			ct := make([]byte, blockLen)
			h.cipher.Encrypt(ct, p)
			cv = ct
			out = append(out, ct...)
		} else {
			newCV := make([]byte, blockLen)
			h.cipher.Encrypt(newCV, cv)
			ct := xor(make([]byte, len(block)), block, newCV[:len(block)])
			cv = newCV
			out = append(out, ct...)
		}
	}
	return out
}

// decryptBlocks implements §4.2's receive-side inverse chaining.
func (h *Handler) decryptBlocks(data []byte) []byte {
	cv := h.iv()
	out := make([]byte, 0, len(data))
	for _, block := range blocks(data, blockLen) {
		if len(block) == blockLen {
			pt := make([]byte, blockLen)
			h.cipher.Decrypt(pt, block)
			pt = xor(pt, pt, cv)
			out = append(out, pt...)
			cv = append([]byte(nil), block...)
		} else {
			newCV := make([]byte, blockLen)
			h.cipher.Encrypt(newCV, cv)
			pt := xor(make([]byte, len(block)), block, newCV[:len(block)])
			out = append(out, pt...)
			cv = newCV
		}
	}
	return out
}

// Encode wraps payload (an already frame-encoded byte string) in a PDU
// header and encrypts it, prefixing the result with a one-byte length of
// the original payload.
func (h *Handler) Encode(payload []byte) []byte {
	header := make([]byte, 6)
	_, _ = rand.Read(header[:2])
	binary.BigEndian.PutUint16(header[2:4], h.rollingCounter)
	header[4] = h.idS
	header[5] = h.idR

	h.rollingCounter++
	h.idS = header[4]

	plain := make([]byte, 0, len(header)+len(payload))
	plain = append(plain, header...)
	plain = append(plain, payload...)
	encrypted := h.encryptBlocks(plain)

	out := make([]byte, 0, 1+len(encrypted))
	out = append(out, byte(len(payload)))
	return append(out, encrypted...)
}

// Decode decrypts a PDU (the bytes following the length byte on the wire,
// sized exactly `size` as declared by the sender — see DESIGN.md for why
// this is not size+6 despite the header being 6 bytes) and returns the
// inner frame-encoded payload.
func (h *Handler) Decode(pdu []byte) ([]byte, error) {
	decrypted := h.decryptBlocks(pdu)
	if len(decrypted) < 6 {
		return nil, errors.New("crypto: pdu shorter than header")
	}
	header := decrypted[:6]
	data := decrypted[6:]

	h.idR = header[4]
	if h.idS != decrypted[5] {
		return nil, ErrInvalidKey
	}
	return data, nil
}
