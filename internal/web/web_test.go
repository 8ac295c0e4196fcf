package web

import (
	"encoding/json"
	"image/color"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tomz197/spacedefender/internal/loop/config"
	"github.com/tomz197/spacedefender/internal/render"
	"github.com/tomz197/spacedefender/internal/store"
)

func TestSurfaceRecordsCommands(t *testing.T) {
	s := NewSurface(960, 540)
	s.FillRect(1, 2, 3, 4, color.NRGBA{R: 0xff, A: 0xff})
	s.Clear(color.NRGBA{R: 0x0a, G: 0x0a, B: 0x1a, A: 0xff})
	s.FillCircle(10.26, 20, 5, color.NRGBA{G: 0xff, A: 0x80})
	s.FillPolygon([]render.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 8}}, color.NRGBA{A: 0xff})
	s.Text(480, 270, "HELLO", 24, render.AlignCenter, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	s.StrokeRect(0, 0, 10, 10, 2, color.NRGBA{A: 0xff})

	cmds := s.Commands()
	if len(cmds) != 5 {
		t.Fatalf("expected Clear to drop earlier commands, got %d commands", len(cmds))
	}
	if cmds[0][0] != opClear || cmds[0][1] != "#0a0a1aff" {
		t.Errorf("unexpected clear command %v", cmds[0])
	}
	if cmds[1][1] != 10.3 || cmds[1][4] != "#00ff0080" {
		t.Errorf("unexpected circle command %v", cmds[1])
	}
	if pts, ok := cmds[2][1].([]float64); !ok || len(pts) != 6 {
		t.Errorf("unexpected polygon points %v", cmds[2][1])
	}
	if cmds[3][3] != "HELLO" || cmds[3][5] != "center" {
		t.Errorf("unexpected text command %v", cmds[3])
	}
	if cmds[4][0] != opStrokeRect {
		t.Errorf("unexpected stroke command %v", cmds[4])
	}

	if w, h := s.Size(); w != 960 || h != 540 {
		t.Errorf("unexpected size %vx%v", w, h)
	}
}

func TestSurfaceImageNeedsSpriteKey(t *testing.T) {
	s := NewSurface(960, 540)
	s.Image(42, 0, 0, 10, 10, 1)
	s.Image(render.SpritePlayer, 1, 2, 50, 40, 0.5)

	cmds := s.Commands()
	if len(cmds) != 1 {
		t.Fatalf("expected one image command, got %v", cmds)
	}
	if cmds[0][0] != opImage || cmds[0][1] != render.SpritePlayer || cmds[0][6] != 0.5 {
		t.Errorf("unexpected image command %v", cmds[0])
	}
}

func TestAssets(t *testing.T) {
	a := NewAssets()
	if _, ok := a.Get(render.SpritePlayer); ok {
		t.Fatal("expected miss before the page reports sprites")
	}

	a.Set([]string{render.SpritePlayer, render.SpriteBullet})
	v, ok := a.Get(render.SpritePlayer)
	if !ok || v != render.SpritePlayer {
		t.Errorf("expected player key, got %v %v", v, ok)
	}

	a.Set([]string{render.SpriteBullet})
	if _, ok := a.Get(render.SpritePlayer); ok {
		t.Error("expected Set to replace the sprite set")
	}
}

func TestSinkDrain(t *testing.T) {
	s := &sink{}
	s.PlaySound(config.SoundShoot, 0.3)
	s.PlayMusic(config.MusicBackground, 0.4, true)
	s.StopMusic()

	sounds, music := s.drain()
	if len(sounds) != 1 || sounds[0].Key != config.SoundShoot || sounds[0].Volume != 0.3 {
		t.Errorf("unexpected sounds %v", sounds)
	}
	if len(music) != 2 || !music[0].Play || music[1].Play {
		t.Errorf("unexpected music %v", music)
	}

	sounds, music = s.drain()
	if sounds != nil || music != nil {
		t.Error("expected drain to empty the queue")
	}
}

func dial(t *testing.T, opts Options) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewHandler(opts))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) FrameMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg FrameMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return msg
}

func hasText(msg FrameMessage, sub string) bool {
	for _, c := range msg.Cmds {
		if len(c) > 3 && c[0] == opText {
			if s, ok := c[3].(string); ok && strings.Contains(s, sub) {
				return true
			}
		}
	}
	return false
}

func TestSessionStreamsMenu(t *testing.T) {
	conn := dial(t, Options{FrameInterval: 5 * time.Millisecond})

	msg := readFrame(t, conn)
	if msg.Type != MessageTypeFrame {
		t.Fatalf("expected frame message, got %q", msg.Type)
	}
	if len(msg.Cmds) == 0 || msg.Cmds[0][0] != opClear {
		t.Fatalf("expected frame to start with a clear, got %v", msg.Cmds)
	}
	if !hasText(msg, "SPACE DEFENDER") {
		t.Error("expected the menu title")
	}
}

func TestSessionStartsGameOnEnter(t *testing.T) {
	conn := dial(t, Options{FrameInterval: 5 * time.Millisecond, Store: &store.Memory{}})
	readFrame(t, conn)

	if err := conn.WriteJSON(ClientMessage{Type: MessageTypeInput, Keys: Keys{Enter: true}}); err != nil {
		t.Fatal(err)
	}

	var music bool
	for i := 0; i < 200; i++ {
		msg := readFrame(t, conn)
		for _, m := range msg.Music {
			if m.Play && m.Key == config.MusicBackground {
				music = true
			}
		}
		if hasText(msg, "SCORE:") {
			if !music {
				t.Error("expected background music when the run starts")
			}
			return
		}
	}
	t.Fatal("game never started")
}

func TestSessionIgnoresMalformedMessages(t *testing.T) {
	conn := dial(t, Options{FrameInterval: 5 * time.Millisecond})
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	raw, _ := json.Marshal(ClientMessage{Type: MessageTypeAssets, Assets: []string{render.SpriteBackground}})
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 200; i++ {
		msg := readFrame(t, conn)
		for _, c := range msg.Cmds {
			if c[0] == opImage && c[1] == render.SpriteBackground {
				return
			}
		}
	}
	t.Fatal("expected the background sprite once the page reported it")
}
