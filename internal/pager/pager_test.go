package pager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPager(t *testing.T, pageSize int) *Pager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	p, err := Create(path, pageSize, 0)
	assert.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestCreateWritesFileHeader(t *testing.T) {
	p := newTestPager(t, 512)
	assert.Equal(t, 512, p.PageSize())
	assert.Equal(t, 512, p.Usable())
	assert.Equal(t, 1, p.PageCount())
}

func TestPageSizeOneMeansSixtyFiveThirtySix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.db")
	p, err := Create(path, 65536, 0)
	assert.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 65536, p.PageSize())
	assert.Equal(t, uint16(1), p.header.PageSizeRaw)
}

func TestAppendPageIncrementsDatabaseSize(t *testing.T) {
	p := newTestPager(t, 512)

	buf := make([]byte, 512)
	buf[0] = 0x0d
	n, err := p.AppendPage(buf)
	assert.NoError(t, err)
	assert.Equal(t, uint32(2), n)
	assert.Equal(t, 2, p.PageCount())

	buf2 := make([]byte, 512)
	buf2[0] = 0x0d
	n2, err := p.AppendPage(buf2)
	assert.NoError(t, err)
	assert.Equal(t, uint32(3), n2)
	assert.Equal(t, 3, p.PageCount())
}

func TestReadPageRoundTrip(t *testing.T) {
	p := newTestPager(t, 512)

	buf := make([]byte, 512)
	for i := range buf {
		buf[i] = byte(i)
	}
	n, err := p.AppendPage(buf)
	assert.NoError(t, err)

	got, err := p.ReadPage(n)
	assert.NoError(t, err)
	assert.Equal(t, buf, got)
}

func TestOpenReparsesExistingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	p, err := Create(path, 1024, 0)
	assert.NoError(t, err)

	buf := make([]byte, 1024)
	buf[0] = 0x0d
	_, err = p.AppendPage(buf)
	assert.NoError(t, err)
	assert.NoError(t, p.Close())

	p2, err := Open(path)
	assert.NoError(t, err)
	defer p2.Close()
	assert.Equal(t, 1024, p2.PageSize())
	assert.Equal(t, 2, p2.PageCount())
}

func TestWritePageRejectsWrongSize(t *testing.T) {
	p := newTestPager(t, 512)
	err := p.WritePage(1, make([]byte, 256))
	assert.Error(t, err)
}

func TestWritePageRejectsPageZero(t *testing.T) {
	p := newTestPager(t, 512)
	err := p.WritePage(0, make([]byte, 512))
	assert.Error(t, err)
}

func TestCreateTruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.db")
	os.WriteFile(path, []byte("garbage garbage garbage"), 0o664)

	p, err := Create(path, 512, 0)
	assert.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 1, p.PageCount())
}
