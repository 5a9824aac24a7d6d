package game

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SerializationChecksum identifies a snapshot's exact content. Replays and the
// snapshot store use it to detect divergent or corrupted states.
type SerializationChecksum struct {
	Hash    string `json:"hash"`
	Version int    `json:"version"`
}

const serializationVersion = 1

// MarshalSnapshot encodes snap as JSON. The encoding is deterministic: struct
// fields keep their order and map keys are sorted.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a snapshot written by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// ComputeChecksum hashes the encoded snapshot.
func ComputeChecksum(snap Snapshot) (SerializationChecksum, error) {
	data, err := MarshalSnapshot(snap)
	if err != nil {
		return SerializationChecksum{}, err
	}
	sum := sha256.Sum256(data)
	return SerializationChecksum{Hash: hex.EncodeToString(sum[:]), Version: serializationVersion}, nil
}

// VerifyChecksum reports whether snap still matches expected.
func VerifyChecksum(snap Snapshot, expected SerializationChecksum) (bool, error) {
	computed, err := ComputeChecksum(snap)
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

// ValidateSerializationRoundtrip checks that snap survives encoding and
// decoding without losing anything.
func ValidateSerializationRoundtrip(snap Snapshot) error {
	original, err := ComputeChecksum(snap)
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}
	data, err := MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	decoded, err := UnmarshalSnapshot(data)
	if err != nil {
		return err
	}
	roundtrip, err := ComputeChecksum(decoded)
	if err != nil {
		return fmt.Errorf("failed to compute roundtrip checksum: %w", err)
	}
	if original.Hash != roundtrip.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, roundtrip=%s", original.Hash, roundtrip.Hash)
	}
	return nil
}
