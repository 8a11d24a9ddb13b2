package pkg

import (
	"fmt"
	"io"
	"os"
)

// Buffered bit-granular file IO. The buffer size is an implementation
// constant, not a format detail; refills and flushes are transparent to
// callers.

const bufferLen = 4096

// BitReader reads a file one bit at a time through a fixed-size buffer.
// Byte and u64 reads are little-endian; bit reads consume the least
// significant bit of each byte first.
type BitReader struct {
	file *os.File
	buf  [bufferLen]byte
	size int    // bytes in buf from the last fill
	pos  int    // bit cursor within buf
	len  uint64 // bits consumed since open or last Seek
}

func NewBitReader(path string) (*BitReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := &BitReader{file: f}
	if err := r.fill(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *BitReader) fill() error {
	n, err := r.file.Read(r.buf[:])
	if err != nil && err != io.EOF {
		return fmt.Errorf("read %s: %w", r.file.Name(), err)
	}
	r.size = n
	r.pos = 0
	return nil
}

// peek returns the buffered byte under the bit cursor, refilling the
// buffer when it is exhausted. Returns io.EOF once the underlying file
// produces no more bytes.
func (r *BitReader) peek() (byte, error) {
	if r.size == 0 {
		return 0, io.EOF
	}
	if r.pos >= 8*r.size {
		if err := r.fill(); err != nil {
			return 0, err
		}
		if r.size == 0 {
			return 0, io.EOF
		}
	}
	return r.buf[r.pos/8], nil
}

// ReadBit returns the next bit and advances the bit cursor.
func (r *BitReader) ReadBit() (byte, error) {
	b, err := r.peek()
	if err != nil {
		return 0, err
	}
	bit := (b >> (r.pos % 8)) & 1
	r.pos++
	r.len++
	return bit, nil
}

// ReadBits reads n bits (n <= 8) least-significant-first into a byte.
// The bits need not start at a byte boundary.
func (r *BitReader) ReadBits(n int) (byte, error) {
	var b byte
	for i := 0; i < n; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		b |= bit << i
	}
	return b, nil
}

func (r *BitReader) ReadByte() (byte, error) {
	if r.pos%8 != 0 {
		return r.ReadBits(8)
	}
	b, err := r.peek()
	if err != nil {
		return 0, err
	}
	r.pos += 8
	r.len += 8
	return b, nil
}

func (r *BitReader) ReadU64() (uint64, error) {
	var v uint64
	for i := 0; i < 8; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b) << (8 * i)
	}
	return v, nil
}

// Seek discards buffered state and repositions the reader at an
// absolute byte offset. The bit counter restarts at zero.
func (r *BitReader) Seek(offset uint64) error {
	if _, err := r.file.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("seek %s: %w", r.file.Name(), err)
	}
	if err := r.fill(); err != nil {
		return err
	}
	r.len = 0
	return nil
}

// ReadLen reports the number of bits consumed since the reader was
// opened or last sought.
func (r *BitReader) ReadLen() uint64 { return r.len }

// EOF reports whether the bit cursor has passed the last bit of the
// file. It may refill the buffer to find out.
func (r *BitReader) EOF() bool {
	_, err := r.peek()
	return err != nil
}

func (r *BitReader) Close() error {
	return r.file.Close()
}

// BitWriter writes a file one bit at a time through a fixed-size
// buffer. Close flushes any buffered bytes; callers must check its
// error, a dropped flush silently truncates the output.
type BitWriter struct {
	file   *os.File
	buf    [bufferLen]byte
	pos    int // bit cursor within buf
	closed bool
}

func NewBitWriter(path string) (*BitWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &BitWriter{file: f}, nil
}

// persist writes the full bytes under the cursor and rewinds the
// buffer. Bits are ORed into place, so the fresh buffer must be zeroed.
func (w *BitWriter) persist() error {
	if _, err := w.file.Write(w.buf[:w.pos/8]); err != nil {
		return fmt.Errorf("write %s: %w", w.file.Name(), err)
	}
	w.buf = [bufferLen]byte{}
	w.pos = 0
	return nil
}

func (w *BitWriter) ensure() error {
	if w.pos >= 8*bufferLen {
		return w.persist()
	}
	return nil
}

func (w *BitWriter) WriteBit(bit byte) error {
	if err := w.ensure(); err != nil {
		return err
	}
	if bit > 0 {
		w.buf[w.pos/8] |= 1 << (w.pos % 8)
	}
	w.pos++
	return nil
}

// WriteBits emits the n low bits of b, least significant first.
func (w *BitWriter) WriteBits(b byte, n int) error {
	for i := 0; i < n; i++ {
		if err := w.WriteBit((b >> i) & 1); err != nil {
			return err
		}
	}
	return nil
}

func (w *BitWriter) WriteByte(b byte) error {
	if w.pos%8 != 0 {
		return w.WriteBits(b, 8)
	}
	if err := w.ensure(); err != nil {
		return err
	}
	w.buf[w.pos/8] = b
	w.pos += 8
	return nil
}

func (w *BitWriter) WriteU64(v uint64) error {
	for i := 0; i < 8; i++ {
		if err := w.WriteByte(byte(v >> (8 * i))); err != nil {
			return err
		}
	}
	return nil
}

// WriteSymbol emits a symbol's code pattern, least significant bit
// first, for its recorded bit length.
func (w *BitWriter) WriteSymbol(code SymbolCode) error {
	for i := uint8(0); i < code.BitLen; i++ {
		if err := w.WriteBit(byte(code.Code >> i & 1)); err != nil {
			return err
		}
	}
	return nil
}

// AlignToByte advances the cursor to the next byte boundary. Padding
// bits are zero. Calling it on an aligned cursor is a no-op.
func (w *BitWriter) AlignToByte() {
	w.pos = (w.pos + 7) / 8 * 8
}

// Close pads the final partial byte with zeros, flushes the buffer and
// closes the file. Closing twice is safe; the second call is a no-op.
func (w *BitWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.AlignToByte()
	werr := w.persist()
	cerr := w.file.Close()
	if werr != nil {
		return werr
	}
	if cerr != nil {
		return fmt.Errorf("close %s: %w", w.file.Name(), cerr)
	}
	return nil
}
