package checksum

// CRC lookup tables, built once from the pinned polynomials. The build is
// the textbook MSB-first expansion, so the entries are value-identical to
// precomputed constants. crc32 needs no table here: it reuses the stdlib
// IEEE implementation.

var (
	crc8Table  [256]uint8
	crc16Table [256]uint16
	crc64Table [256]uint64
)

func init() {
	for i := 0; i < 256; i++ {
		crc8Table[i] = uint8(buildEntry(8, 0x07, i))
		crc16Table[i] = uint16(buildEntry(16, 0x1021, i))
		crc64Table[i] = buildEntry(64, 0x42F0E1EBA9EA3693, i)
	}
}

func buildEntry(width uint, poly uint64, b int) uint64 {
	var mask uint64 = 1<<width - 1
	if width == 64 {
		mask = ^uint64(0)
	}
	top := uint64(1) << (width - 1)
	r := uint64(b) << (width - 8)
	for i := 0; i < 8; i++ {
		if r&top != 0 {
			r = r<<1&mask ^ poly
		} else {
			r = r << 1 & mask
		}
	}
	return r & mask
}
