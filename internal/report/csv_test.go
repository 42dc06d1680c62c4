package report

import (
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriterHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteHeader([]string{"Hostname", "MGMT IP"}))
	require.NoError(t, w.WriteHeader([]string{"should", "not", "appear"}))
	require.NoError(t, w.WriteRow([]string{"tor-r1", "10.0.0.1"}))
	require.NoError(t, w.Close())

	rows := readAll(t, path)
	require.Len(t, rows, 2, "重复写表头不生效")
	assert.Equal(t, []string{"Hostname", "MGMT IP"}, rows[0])
	assert.Equal(t, []string{"tor-r1", "10.0.0.1"}, rows[1])
}

func TestCSVWriterConcurrentRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader([]string{"Hostname"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.WriteRow([]string{"host"}))
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close())

	rows := readAll(t, path)
	assert.Len(t, rows, 51, "并发写入不丢行")
}

func TestCSVRoundTripMultiline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader([]string{"Hostname", "Boards"}))
	require.NoError(t, w.WriteRow([]string{"tor-r1", "1 - CE-MPUA, 2 - CE-SFU08F"}))
	require.NoError(t, w.Close())

	rows := readAll(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "1 - CE-MPUA, 2 - CE-SFU08F", rows[1][1], "含逗号的单元格往返无损")
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	r, err := NewCSVReader(path)
	require.NoError(t, err)
	defer r.Close()

	var rows [][]string
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}
