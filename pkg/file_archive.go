package fecom

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

const fileArchiveCodec = "file archive"

var fileArchiveMagic = [4]byte{'F', 'C', 'A', 'R'}

const (
	fileArchiveVersion uint16 = 1
	maxFrameSize              = 1 << 30
)

type fileArchiveHeader struct {
	Magic       [4]byte
	Version     uint16
	Compression Compression
	_           uint8
}

type frameHeader struct {
	Size uint32
	CRC  uint32
}

var frameHeaderSize = int64(binary.Size(frameHeader{}))

type FileArchiveOptions struct {
	Options
	Compression      Compression
	CompressionLevel int
}

// FileArchiveWriter appends length-prefixed, checksummed frames to a file.
type FileArchiveWriter struct {
	filename string
	file     *os.File
	buf      *bufio.Writer
	zw       *zstd.Encoder
	opts     FileArchiveOptions
	frames   int
}

func CreateFileArchive(filename string, opts FileArchiveOptions) (*FileArchiveWriter, error) {
	if opts.Compression > CompressionZstd {
		return nil, fmt.Errorf("unsupported compression %d", opts.Compression)
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	w := &FileArchiveWriter{
		filename: filename,
		file:     file,
		buf:      bufio.NewWriter(file),
		opts:     opts,
	}
	if opts.Compression == CompressionZstd {
		w.zw, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdLevel(opts.CompressionLevel)))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
	}
	header := fileArchiveHeader{Magic: fileArchiveMagic, Version: fileArchiveVersion, Compression: opts.Compression}
	if err := binary.Write(w.buf, binary.LittleEndian, header); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing archive header: %w", err)
	}
	opts.logf(PrioInformation, "fileArchive", "created %s (compression %s)", filename, opts.Compression)
	return w, nil
}

func (w *FileArchiveWriter) Store(record []byte) error {
	payload := record
	// empty records are stored as empty frames whatever the compression
	if w.zw != nil && len(record) > 0 {
		payload = w.zw.EncodeAll(record, nil)
	}
	if len(payload) > maxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds %d", len(payload), maxFrameSize)
	}
	header := frameHeader{Size: uint32(len(payload)), CRC: crc32.ChecksumIEEE(payload)}
	if err := binary.Write(w.buf, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing frame %d: %w", w.frames, err)
	}
	if _, err := w.buf.Write(payload); err != nil {
		return fmt.Errorf("writing frame %d: %w", w.frames, err)
	}
	w.frames++
	w.opts.logf(PrioTrace, "fileArchive", "frame %d: %d bytes stored, %d bytes record", w.frames, len(payload), len(record))
	return nil
}

func (w *FileArchiveWriter) Close() error {
	var errs []error
	if err := w.buf.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flushing %s: %w", w.filename, err))
	}
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing %s: %w", w.filename, err))
	}
	return errors.Join(errs...)
}

// FileArchiveReader reads the frames written by FileArchiveWriter.
type FileArchiveReader struct {
	filename    string
	file        *os.File
	buf         *bufio.Reader
	zr          *zstd.Decoder
	compression Compression
	opts        Options
	offset      int64
}

func OpenFileArchive(filename string, opts Options) (*FileArchiveReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	r := &FileArchiveReader{
		filename: filename,
		file:     file,
		buf:      bufio.NewReader(file),
		opts:     opts,
	}

	var header fileArchiveHeader
	if err := binary.Read(r.buf, binary.LittleEndian, &header); err != nil {
		file.Close()
		return nil, r.corrupted("reading archive header", err)
	}
	if header.Magic != fileArchiveMagic {
		file.Close()
		return nil, r.corrupted(fmt.Sprintf("bad magic %q", header.Magic[:]), nil)
	}
	if header.Version != fileArchiveVersion {
		file.Close()
		return nil, r.corrupted(fmt.Sprintf("unsupported version %d", header.Version), nil)
	}
	r.offset = int64(binary.Size(header))
	r.compression = header.Compression

	switch header.Compression {
	case CompressionNone:
	case CompressionZstd:
		r.zr, err = zstd.NewReader(nil)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
	default:
		file.Close()
		return nil, r.corrupted(fmt.Sprintf("unknown compression %d", header.Compression), nil)
	}
	opts.logf(PrioInformation, "fileArchive", "opened %s (compression %s)", filename, header.Compression)
	return r, nil
}

func (r *FileArchiveReader) Compression() Compression {
	return r.compression
}

func (r *FileArchiveReader) corrupted(reason string, err error) error {
	return &CorruptedStreamError{Codec: fileArchiveCodec, Offset: r.offset, Reason: reason, Err: err}
}

func (r *FileArchiveReader) Load() ([]byte, error) {
	var header frameHeader
	if err := binary.Read(r.buf, binary.LittleEndian, &header); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, r.corrupted("reading frame header", err)
	}
	if header.Size > maxFrameSize {
		return nil, r.corrupted(fmt.Sprintf("frame size %d exceeds %d", header.Size, maxFrameSize), nil)
	}
	payload := make([]byte, header.Size)
	if _, err := io.ReadFull(r.buf, payload); err != nil {
		return nil, r.corrupted("reading frame payload", err)
	}
	if crc := crc32.ChecksumIEEE(payload); crc != header.CRC {
		return nil, r.corrupted(fmt.Sprintf("checksum mismatch: stored %08x, computed %08x", header.CRC, crc), nil)
	}
	if r.zr != nil && len(payload) > 0 {
		record, err := r.zr.DecodeAll(payload, nil)
		if err != nil {
			return nil, r.corrupted("decompressing frame", err)
		}
		payload = record
	}
	r.offset += frameHeaderSize + int64(header.Size)
	return payload, nil
}

func (r *FileArchiveReader) Close() error {
	if r.zr != nil {
		r.zr.Close()
	}
	return r.file.Close()
}
