// Package mp4test builds tiny MP4 files for tests.
package mp4test

import "encoding/binary"

func box(typ string, payload []byte) []byte {
	b := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(b, uint32(8+len(payload)))
	copy(b[4:], typ)
	return append(b, payload...)
}

// Minimal returns ftyp + moov/mvhd (version 0) with the given timescale and duration
func Minimal(timescale, duration uint32) []byte {
	ftyp := box("ftyp", []byte("isom\x00\x00\x02\x00isom"))

	mvhd := make([]byte, 100)
	binary.BigEndian.PutUint32(mvhd[12:], timescale)
	binary.BigEndian.PutUint32(mvhd[16:], duration)
	binary.BigEndian.PutUint32(mvhd[20:], 0x00010000) // rate 1.0
	binary.BigEndian.PutUint16(mvhd[24:], 0x0100)     // volume 1.0
	binary.BigEndian.PutUint32(mvhd[36:], 0x00010000) // unity matrix
	binary.BigEndian.PutUint32(mvhd[52:], 0x00010000)
	binary.BigEndian.PutUint32(mvhd[68:], 0x40000000)
	binary.BigEndian.PutUint32(mvhd[96:], 2) // next track id

	return append(ftyp, box("moov", box("mvhd", mvhd))...)
}
