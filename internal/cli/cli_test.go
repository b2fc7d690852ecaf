package cli

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// mockTransitServer serves one bus location page and two line status pages
func mockTransitServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/bus", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body><ul>
<li class="plotList"><div><span class="predictionTime">到着予定:08:19</span></div></li>
</ul></body></html>`)
	})
	mux.HandleFunc("/keio", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body><dd class="normal">平常運転</dd></body></html>`)
	})
	mux.HandleFunc("/sobu", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body><dd class="trouble">信号確認の影響で、遅れが出ています。</dd></body></html>`)
	})
	return httptest.NewServer(mux)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestOnceAllWritesTables(t *testing.T) {
	server := mockTransitServer()
	defer server.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "transitboard.yaml")
	cfg := fmt.Sprintf(`
bus:
  url: %[1]s/bus
  output: %[2]s/public/chiba_timetable.csv
disruption:
  priority_tiers: [keio]
  routes:
    - line_name: 京王線
      url: %[1]s/keio
      tier: keio
    - line_name: 総武線快速
      url: %[1]s/sobu
  output: %[2]s/public/result.csv
  corridor:
    lines: [総武線快速]
    output: %[2]s/public/chiba_result.csv
http:
  requests_per_second: 0
operator:
  prompt: false
  file: %[2]s/public/custom.csv
publish:
  enabled: false
storage:
  db_path: %[2]s/data/snapshot.db
`, server.URL, dir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	require.NoError(t, ExecuteArgs("once", "all", "--config", cfgPath))

	assert.Equal(t, [][]string{
		{"leave_time", "delay_time", "minutes_info"},
		{"08:00", "0", "0"},
	}, readCSV(t, filepath.Join(dir, "public", "chiba_timetable.csv")))

	report := readCSV(t, filepath.Join(dir, "public", "result.csv"))
	assert.Equal(t, [][]string{
		{"路線名", "運行情報", "ステータス"},
		{"総武線快速", "信号確認の影響で、遅れが出ています。", "遅延"},
	}, report)
	assert.Equal(t, report, readCSV(t, filepath.Join(dir, "public", "chiba_result.csv")))

	_, err := os.Stat(filepath.Join(dir, "data", "snapshot.db"))
	assert.NoError(t, err)
}

func TestConfigInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transitboard.yaml")

	require.NoError(t, ExecuteArgs("config", "init", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "bus")
	assert.Contains(t, decoded, "disruption")

	// A second init without --force refuses to overwrite
	assert.Error(t, ExecuteArgs("config", "init", path))
}
