package flat

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/custodia-labs/reqlens/internal/core/domain"
)

var magic = [4]byte{'R', 'Q', 'L', 'V'}

const formatVersion uint32 = 1

// header is the fixed-size prefix of the encoding.
type header struct {
	Magic   [4]byte
	Version uint32
	Dim     uint32
	Count   uint32
	NextID  uint64
}

// MarshalBinary encodes the store as
// header | ids (int64 LE) | vectors (float32 LE) | metadata length | metadata JSON.
func (s *Store) MarshalBinary() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metaJSON, err := json.Marshal(s.meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(24 + len(s.ids)*8 + len(s.vectors)*4 + 4 + len(metaJSON))

	h := header{
		Magic:   magic,
		Version: formatVersion,
		Dim:     uint32(s.dim),
		Count:   uint32(len(s.ids)),
		NextID:  uint64(s.nextID),
	}
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	for _, id := range s.ids {
		_ = binary.Write(&buf, binary.LittleEndian, int64(id))
	}
	buf.Write(float32SliceToBytes(s.vectors))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(metaJSON)))
	buf.Write(metaJSON)
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes data and swaps it in only when it is consistent.
func (s *Store) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return corrupt("truncated header")
	}
	if h.Magic != magic {
		return corrupt("bad magic")
	}
	if h.Version != formatVersion {
		return corrupt("unsupported version %d", h.Version)
	}
	if int(h.Dim) != s.dim {
		return corrupt("stored dimension %d, configured %d", h.Dim, s.dim)
	}

	count := int(h.Count)
	vecBytes := count * s.dim * 4
	if r.Len() < count*8+vecBytes+4 {
		return corrupt("truncated body")
	}

	ids := make([]int, count)
	seen := make(map[int]struct{}, count)
	for i := range ids {
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return corrupt("truncated ids")
		}
		if id < 0 || uint64(id) >= h.NextID {
			return corrupt("record id %d outside [0,%d)", id, h.NextID)
		}
		if _, dup := seen[int(id)]; dup {
			return corrupt("duplicate record id %d", id)
		}
		seen[int(id)] = struct{}{}
		ids[i] = int(id)
	}

	raw := make([]byte, vecBytes)
	if _, err := r.Read(raw); err != nil && vecBytes > 0 {
		return corrupt("truncated vectors")
	}
	vectors := bytesToFloat32Slice(raw)

	var metaLen uint32
	if err := binary.Read(r, binary.LittleEndian, &metaLen); err != nil {
		return corrupt("truncated metadata length")
	}
	if int(metaLen) != r.Len() {
		return corrupt("metadata length %d, %d bytes remain", metaLen, r.Len())
	}
	metaJSON := make([]byte, metaLen)
	_, _ = r.Read(metaJSON)

	var meta []domain.ChunkMetadata
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return corrupt("metadata: %v", err)
	}
	if len(meta) != count {
		return corrupt("%d metadata entries for %d vectors", len(meta), count)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = vectors
	s.meta = meta
	s.ids = ids
	s.nextID = int(h.NextID)
	return nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrCorruptIndex, fmt.Sprintf(format, args...))
}

// float32SliceToBytes converts a float32 slice to little-endian bytes.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts little-endian bytes back to float32s.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
