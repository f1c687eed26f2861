package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/padpainter/pkg/padfilter"
)

const watchDebounce = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run select whenever the board, netlist or libraries change",
	Long: `Watch runs select once, then again every time the board, the netlist, a
sym-lib-table or a library file used by the selected parts is written.
Each run prints the pads that became selected (+) or deselected (-).

Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addSelectFlags(watchCmd)
}

// consoleHighlighter prints highlight changes instead of drawing them.
type consoleHighlighter struct {
	w   io.Writer
	lit map[padfilter.PadIdentity]bool
}

func newConsoleHighlighter(w io.Writer) *consoleHighlighter {
	return &consoleHighlighter{w: w, lit: make(map[padfilter.PadIdentity]bool)}
}

func (h *consoleHighlighter) SetHighlighted(pad padfilter.PadIdentity, on bool) error {
	if h.lit[pad] == on {
		return nil
	}
	mark := "-"
	if on {
		mark = "+"
		h.lit[pad] = true
	} else {
		delete(h.lit, pad)
	}
	_, err := fmt.Fprintf(h.w, "%s %s %s\n", mark, pad, pad.Net)
	return err
}

// update clears pads that are no longer selected and paints new ones.
func (h *consoleHighlighter) update(selected []padfilter.PadIdentity) []padfilter.PadError {
	keep := make(map[padfilter.PadIdentity]bool, len(selected))
	for _, p := range selected {
		keep[p] = true
	}
	var stale []padfilter.PadIdentity
	for p := range h.lit {
		if !keep[p] {
			stale = append(stale, p)
		}
	}
	errs := padfilter.Clear(h, stale)
	return append(errs, padfilter.Paint(h, selected)...)
}

type watcher struct {
	fs  *fsnotify.Watcher
	out io.Writer
	hl  *consoleHighlighter

	// refresh runs after a debounced change; run unless replaced.
	refresh func() error

	mu    sync.Mutex
	files map[string]bool // absolute paths that trigger a run
	dirs  map[string]bool // directories added to fs
}

func newWatcher(fsw *fsnotify.Watcher, out io.Writer) *watcher {
	w := &watcher{
		fs:    fsw,
		out:   out,
		hl:    newConsoleHighlighter(out),
		files: make(map[string]bool),
		dirs:  make(map[string]bool),
	}
	w.refresh = w.run
	return w
}

func runWatch(cmd *cobra.Command, args []string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	w := newWatcher(fsw, cmd.OutOrStdout())
	if err := w.run(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("watching for changes", zap.Int("files", len(w.files)))
	w.loop(ctx)
	return nil
}

// run performs one select pass and refreshes the set of watched files.
func (w *watcher) run() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, res, err := selectPads(cfg, logger)
	if err != nil {
		return err
	}

	for _, pe := range w.hl.update(res.Pads()) {
		logger.Warn("highlight failed", zap.Stringer("pad", pe.Pad), zap.Error(pe.Err))
	}
	_, _ = fmt.Fprintf(w.out, "[%s] %d pads selected\n", time.Now().Format("15:04:05"), len(res.Matches))

	paths := []string{cfg.Board, s.model.Source.Netlist}
	paths = append(paths, s.model.Source.Tables...)
	for _, p := range s.model.List() {
		if p.HasFile() {
			paths = append(paths, p.ResolvedFile)
		}
	}
	for _, p := range paths {
		w.track(p)
	}
	return nil
}

// track watches the directory of path, since editors often replace files
// instead of writing them in place.
func (w *watcher) track(path string) {
	if path == "" {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.files[abs] = true

	dir := filepath.Dir(abs)
	if w.dirs[dir] {
		return
	}
	if err := w.fs.Add(dir); err != nil {
		logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
		return
	}
	w.dirs[dir] = true
}

func (w *watcher) relevant(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	abs, err := filepath.Abs(name)
	return err == nil && w.files[abs]
}

// loop handles file system events until ctx is cancelled.
func (w *watcher) loop(ctx context.Context) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				logger.Debug("change detected", zap.String("file", filepath.Base(name)))
				if err := w.refresh(); err != nil {
					logger.Error("refresh failed", zap.Error(err))
				}
			})

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
