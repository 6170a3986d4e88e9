package simulator

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

// txHash generates a 0x-prefixed 32-byte transaction hash
func (s *Simulator) txHash(id string, phase Phase) string {
	var salt [8]byte
	binary.BigEndian.PutUint64(salt[:], s.rng.Uint64())
	return crypto.Keccak256Hash([]byte(id), []byte(phase), salt[:]).Hex()
}
