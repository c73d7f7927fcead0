package persist

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// JournalEntry is one applied bridge command.
type JournalEntry struct {
	Bridge  string          `json:"bridge"`
	Method  string          `json:"method"`
	Source  ecs.EntityID    `json:"source"`
	Command json.RawMessage `json:"command"`
}

// JournalTick is one line of a journal file: every command drained in a tick.
type JournalTick struct {
	Tick     uint64         `json:"tick"`
	Commands []JournalEntry `json:"commands"`
}

// CommandJournal records every command the bridges apply and writes them
// out once per tick. Record runs during bridge drains on the loop
// goroutine; Flush runs in the persist phase.
type CommandJournal struct {
	w       *jsonlWriter
	pending []JournalEntry
	ticks   uint64
	log     *zap.Logger
}

var _ bridge.Journal = (*CommandJournal)(nil)

func NewCommandJournal(dir, prefix string, log *zap.Logger) *CommandJournal {
	if prefix == "" {
		prefix = "commands"
	}
	return &CommandJournal{w: newJSONLWriter(dir, prefix), log: log}
}

func (j *CommandJournal) Record(name string, cmd bridge.Command) {
	raw, err := json.Marshal(cmd)
	if err != nil {
		j.log.Warn("journal: encode command",
			zap.String("bridge", name),
			zap.String("method", cmd.MethodName()),
			zap.Error(err),
		)
		return
	}
	j.pending = append(j.pending, JournalEntry{
		Bridge:  name,
		Method:  cmd.MethodName(),
		Source:  cmd.Source(),
		Command: raw,
	})
}

// Pending returns the number of commands recorded since the last flush.
func (j *CommandJournal) Pending() int { return len(j.pending) }

// Written returns the number of tick lines written.
func (j *CommandJournal) Written() uint64 { return j.ticks }

// Flush writes the recorded commands as one line for tick. Ticks with no
// commands are skipped.
func (j *CommandJournal) Flush(tick uint64) error {
	if len(j.pending) == 0 {
		return nil
	}
	line := JournalTick{Tick: tick, Commands: j.pending}
	err := j.w.Write(line)
	j.pending = j.pending[:0]
	if err != nil {
		return fmt.Errorf("journal tick %d: %w", tick, err)
	}
	j.ticks++
	return nil
}

func (j *CommandJournal) Close() error {
	return j.w.Close()
}

// JournalFiles lists the journal files in dir for prefix, oldest first.
func JournalFiles(dir, prefix string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ReadJournal decodes every tick line of one journal file.
func ReadJournal(path string) ([]JournalTick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []JournalTick
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var t JournalTick
		if err := json.Unmarshal(sc.Bytes(), &t); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, t)
	}
	return out, sc.Err()
}
