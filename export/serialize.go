package export

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
	"github.com/technologiescollege/SweetEnergy3d-sub000/objstream"
)

// DiagSuffix names the file left next to an output that failed to write or
// verify.
const DiagSuffix = ".diag"

// Serialize writes root to dest as an object stream. A stale dest is
// removed first. The file is synced before it is closed and its header is
// verified afterwards. It returns the number of bytes written.
func Serialize(root objstream.Object, dest string) (int64, error) {
	if root == nil {
		return 0, errors.InvalidInput(errors.PhaseSerialize, "nil scene root")
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return 0, errors.IO(errors.PhaseSerialize, dest, err)
	}

	n, err := write(root, dest)
	if err == nil {
		err = VerifyHeader(dest)
	}
	if err != nil {
		writeDiag(dest, err)
		return n, err
	}
	return n, nil
}

func write(root objstream.Object, dest string) (n int64, err error) {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, errors.IO(errors.PhaseSerialize, dest, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.IO(errors.PhaseSerialize, dest, cerr)
		}
	}()

	enc, err := objstream.NewEncoder(f)
	if err != nil {
		return 0, err
	}
	if err := enc.Encode(root); err != nil {
		return enc.Written(), err
	}
	if err := f.Sync(); err != nil {
		return enc.Written(), errors.IO(errors.PhaseSerialize, dest, err)
	}
	return enc.Written(), nil
}

// VerifyHeader checks that path starts with the stream magic.
func VerifyHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.IO(errors.PhaseSerialize, path, err)
	}
	defer f.Close()

	var magic [2]byte
	n, err := io.ReadFull(f, magic[:])
	switch {
	case n == 0:
		return errors.New(errors.PhaseSerialize, errors.KindVerification).
			Path(path).
			Detail("output is empty").
			Build()
	case err != nil:
		return errors.New(errors.PhaseSerialize, errors.KindVerification).
			Path(path).
			Detail("output shorter than the stream header").
			Cause(err).
			Build()
	}
	if got := binary.BigEndian.Uint16(magic[:]); got != objstream.Magic {
		return errors.New(errors.PhaseSerialize, errors.KindVerification).
			Path(path).
			Value(got).
			Detail("bad magic 0x%04x", got).
			Build()
	}
	return nil
}

// writeDiag leaves a short explanation next to dest. Failing to write it
// is ignored.
func writeDiag(dest string, cause error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s export of %s failed\n", time.Now().Format(time.RFC3339), dest)
	for _, line := range errors.Chain(cause) {
		b.WriteString(strings.TrimSpace(line))
		b.WriteByte('\n')
	}
	_ = os.WriteFile(dest+DiagSuffix, b.Bytes(), 0o644)
}
