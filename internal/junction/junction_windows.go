//go:build windows

package junction

import (
	"encoding/binary"
	"os"

	"github.com/Microsoft/go-winio"
	acl "github.com/hectane/go-acl"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// Reparse-point constants, per the Windows DDK headers. The standard
// library carries the same values in an internal package that cannot be
// imported from here, so they are reproduced locally.
const (
	fsctlSetReparsePoint    = 0x000900A4
	fsctlGetReparsePoint    = 0x000900A8
	fsctlDeleteReparsePoint = 0x000900AC
	ioReparseTagMountPoint  = 0xA0000003
	maxReparseDataSize      = 16 * 1024
)

// mountPointHeader lays out a REPARSE_DATA_BUFFER for
// IO_REPARSE_TAG_MOUNT_POINT: header, then the union's SubstituteName and
// PrintName, both NT-namespace UTF-16 paths ("\??\C:\...").
type mountPointHeader struct {
	ReparseTag        uint32
	ReparseDataLength uint16
	Reserved          uint16

	SubstituteNameOffset uint16
	SubstituteNameLength uint16
	PrintNameOffset      uint16
	PrintNameLength      uint16
}

// createRedirection creates a Directory Junction at link pointing at
// target. Junctions need no elevated privilege to create — that is
// the point of using one instead of a symlink — but go-winio's backup-
// semantics open is still required to obtain a handle to an empty
// directory without FILE_FLAG_OPEN_REPARSE_POINT interference.
func createRedirection(link, target string) error {
	if _, err := os.Stat(link); err == nil {
		return errors.New("junction link path already exists")
	}
	fi, err := os.Stat(target)
	if err != nil {
		return errors.Wrap(err, "junction target must be an existing directory")
	}
	if !fi.IsDir() {
		return errors.New("junction target must be an existing directory")
	}

	if err := os.Mkdir(link, 0o755); err != nil {
		return errors.Wrap(err, "create junction link directory")
	}

	handle, err := winio.OpenForBackup(link, windows.GENERIC_WRITE, 0, windows.OPEN_EXISTING)
	if err != nil {
		_ = os.Remove(link)
		return errors.Wrap(err, "open junction link for backup")
	}
	defer handle.Close()

	buf, err := buildMountPointBuffer(target)
	if err != nil {
		_ = os.Remove(link)
		return errors.Wrap(err, "build reparse buffer")
	}

	var bytesReturned uint32
	if err := windows.DeviceIoControl(
		windows.Handle(handle.Fd()), fsctlSetReparsePoint,
		&buf[0], uint32(len(buf)), nil, 0, &bytesReturned, nil,
	); err != nil {
		_ = os.Remove(link)
		return errors.Wrap(err, "DeviceIoControl FSCTL_SET_REPARSE_POINT")
	}

	// Re-apply a sane ACL to the relocated target tree so the redirected
	// content stays readable by the owning user.
	if err := acl.Chmod(target, 0o755); err != nil {
		// Non-fatal: the junction itself is already live.
		return nil
	}
	return nil
}

// buildMountPointBuffer encodes an NT-namespace mount-point reparse
// buffer for target, following the documented REPARSE_DATA_BUFFER layout:
// header, then SubstituteName and PrintName as UTF-16 strings whose offsets
// and lengths are recorded in the header, each followed by a UTF-16 NUL.
func buildMountPointBuffer(target string) ([]byte, error) {
	ntPath := `\??\` + target
	substitute, err := windows.UTF16FromString(ntPath)
	if err != nil {
		return nil, err
	}
	printName, err := windows.UTF16FromString(target)
	if err != nil {
		return nil, err
	}
	// UTF16FromString appends a trailing NUL; the name lengths exclude it
	// but the path buffer layout keeps one after each name.
	substituteBytes := utf16ToBytes(substitute)
	printBytes := utf16ToBytes(printName)

	pathBuffer := append(append([]byte{}, substituteBytes...), printBytes...)

	header := mountPointHeader{
		ReparseTag:           ioReparseTagMountPoint,
		SubstituteNameOffset: 0,
		SubstituteNameLength: uint16(len(substituteBytes) - 2),
		PrintNameOffset:      uint16(len(substituteBytes)),
		PrintNameLength:      uint16(len(printBytes) - 2),
	}
	header.ReparseDataLength = uint16(8 /* union header */ + len(pathBuffer))

	out := make([]byte, 0, 8+8+len(pathBuffer))
	out = binary.LittleEndian.AppendUint32(out, header.ReparseTag)
	out = binary.LittleEndian.AppendUint16(out, header.ReparseDataLength)
	out = binary.LittleEndian.AppendUint16(out, header.Reserved)
	out = binary.LittleEndian.AppendUint16(out, header.SubstituteNameOffset)
	out = binary.LittleEndian.AppendUint16(out, header.SubstituteNameLength)
	out = binary.LittleEndian.AppendUint16(out, header.PrintNameOffset)
	out = binary.LittleEndian.AppendUint16(out, header.PrintNameLength)
	out = append(out, pathBuffer...)

	if len(out) > maxReparseDataSize {
		return nil, errors.New("reparse data too large")
	}
	return out, nil
}

func utf16ToBytes(u []uint16) []byte {
	b := make([]byte, len(u)*2)
	for i, v := range u {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return b
}

// removeRedirection removes the junction at link without touching its
// target: it clears the reparse point, then removes the now-plain empty
// directory.
func removeRedirection(link string) error {
	handle, err := winio.OpenForBackup(link, windows.GENERIC_WRITE, 0, windows.OPEN_EXISTING)
	if err != nil {
		return errors.Wrap(err, "open junction for removal")
	}

	// FSCTL_DELETE_REPARSE_POINT takes just the 8-byte REPARSE_DATA_BUFFER
	// header with a zero data length.
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf, ioReparseTagMountPoint)

	var bytesReturned uint32
	dioErr := windows.DeviceIoControl(
		windows.Handle(handle.Fd()), fsctlDeleteReparsePoint,
		&buf[0], uint32(len(buf)), nil, 0, &bytesReturned, nil,
	)
	handle.Close()
	if dioErr != nil {
		return errors.Wrap(dioErr, "DeviceIoControl FSCTL_DELETE_REPARSE_POINT")
	}

	return os.Remove(link)
}

// isRedirection reports whether path carries the FILE_ATTRIBUTE_REPARSE_POINT
// attribute, i.e. is itself a junction (or any other reparse point).
func isRedirection(path string) (bool, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false, err
	}
	return attrs&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0, nil
}
