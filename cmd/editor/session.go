package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"resumeEditor/internal/editor"
	"resumeEditor/internal/resume"
	"resumeEditor/internal/syncer"
)

const flushTimeout = 10 * time.Second

// session 把输入的每一行交给编辑器，并把自动保存与远程同步挂在同一个 store 上。
type session struct {
	ed     *editor.Editor
	saver  *syncer.AutoSave
	remote *syncer.RemoteSync
	out    io.Writer
	// restored 是最近一次撤销/重做的描述，由 Restore 事件写入。
	restored string
}

func newSession(ed *editor.Editor, api syncer.ResumeAPI, out io.Writer, saveOpts []syncer.AutoSaveOption, remoteOpts []syncer.RemoteOption) *session {
	remote := syncer.NewRemoteSync(ed, api, remoteOpts...)
	saveOpts = append(slices.Clip(saveOpts), syncer.WithFailureQueue(remote))
	return &session{
		ed:     ed,
		saver:  syncer.NewAutoSave(ed, api, saveOpts...),
		remote: remote,
		out:    out,
	}
}

// run 载入简历后逐行执行，输入结束或 ctx 取消时刷新未保存的修改。
func (s *session) run(ctx context.Context, r *resume.Resume, in io.Reader) error {
	// 先载入再挂阶段，载入本身不需要回写服务端。
	s.ed.Dispatch(editor.SetResume{Resume: r})
	s.ed.Use(s.saver, s.remote, editor.StageFunc(s.observeRestore))
	defer s.saver.Stop()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.apply(ctx, line); err != nil {
			fmt.Fprintln(s.out, errorStyle.Render("error:"), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	err := s.saver.Flush(flushCtx)
	s.remote.Wait()
	fmt.Fprintln(s.out, renderStatus(s.ed.Status(), s.remote))
	if err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	return nil
}

func (s *session) apply(ctx context.Context, line string) error {
	switch line {
	case "undo":
		s.report(s.ed.Undo(), "nothing to undo")
		return nil
	case "redo":
		s.report(s.ed.Redo(), "nothing to redo")
		return nil
	case "offline":
		s.remote.SetOnline(false)
		fmt.Fprintln(s.out, field("sync", "offline"))
		return nil
	case "online":
		s.remote.SetOnline(true)
		s.remote.Wait()
		fmt.Fprintln(s.out, field("sync", fmt.Sprintf("online, %d queued", len(s.remote.Queue()))))
		return nil
	case "save":
		if err := s.saver.Flush(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, field("save", "saved"))
		return nil
	case "status":
		fmt.Fprintln(s.out, renderStatus(s.ed.Status(), s.remote))
		return nil
	}

	if !strings.HasPrefix(line, "{") {
		return fmt.Errorf("unknown command %q", line)
	}
	a, err := editor.DecodeAction([]byte(line))
	if err != nil {
		return err
	}
	if !s.ed.Dispatch(a) {
		fmt.Fprintln(s.out, mutedStyle.Render("no change: "+editor.Describe(a)))
		return nil
	}
	fmt.Fprintln(s.out, field("applied", editor.Describe(a)))
	return nil
}

// observeRestore 在 Undo/Redo 返回前被同步调用。
func (s *session) observeRestore(a editor.Action) {
	if r, ok := a.(editor.Restore); ok {
		s.restored = editor.Describe(r)
	}
}

func (s *session) report(changed bool, none string) {
	if !changed {
		fmt.Fprintln(s.out, mutedStyle.Render(none))
		return
	}
	fmt.Fprintln(s.out, field("applied", s.restored))
}
