// Terminal client for the timing challenge server. Connects over
// WebSocket, joins quick match, and either takes commands from stdin or
// plays rounds by itself with -auto.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/fatih/color"

	"timingchallenge/internal/events"
)

var (
	serverAddr = flag.String("server", "localhost:8080", "server address (host:port)")
	name       = flag.String("name", "", "display name")
	auto       = flag.Bool("auto", false, "ready up and submit automatically")
)

var (
	infoColor  = color.New(color.FgCyan)
	gameColor  = color.New(color.FgYellow, color.Bold)
	goodColor  = color.New(color.FgGreen, color.Bold)
	badColor   = color.New(color.FgRed)
	boardColor = color.New(color.FgWhite)
)

type client struct {
	conn     *websocket.Conn
	playerID string
}

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := "ws://" + *serverAddr + "/ws"
	infoColor.Printf("connecting to %s\n", url)
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		badColor.Fprintf(os.Stderr, "dial failed: %v\n", err)
		os.Exit(1)
	}
	c := &client{conn: conn}
	defer conn.Close(websocket.StatusNormalClosure, "")

	c.send(ctx, events.TypeJoinQuickMatch, events.JoinQuickMatchPayload{Username: *name})

	if !*auto {
		go c.readInput(ctx)
		infoColor.Println("commands: ready | hit | quick | create | join <code> | quit")
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			infoColor.Println("disconnected")
			return
		}
		c.handle(ctx, data)
	}
}

func (c *client) send(ctx context.Context, eventType string, payload any) {
	out := events.Inbound{Type: eventType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			badColor.Println("marshal:", err)
			return
		}
		out.Data = raw
	}
	frame, _ := json.Marshal(out)
	if err := c.conn.Write(ctx, websocket.MessageText, frame); err != nil {
		badColor.Println("write:", err)
	}
}

func (c *client) readInput(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "ready":
			c.send(ctx, events.TypeSetReady, nil)
		case "hit":
			c.send(ctx, events.TypeSubmit, events.SubmitPayload{ClientTimestampMs: time.Now().UnixMilli()})
		case "quick":
			c.send(ctx, events.TypeJoinQuickMatch, events.JoinQuickMatchPayload{Username: *name})
		case "create":
			c.send(ctx, events.TypeCreateRoom, nil)
		case "join":
			if len(fields) < 2 {
				badColor.Println("usage: join <code>")
				continue
			}
			c.send(ctx, events.TypeJoinRoom, events.JoinRoomPayload{RoomID: strings.ToUpper(fields[1])})
		case "quit":
			c.conn.Close(websocket.StatusNormalClosure, "bye")
			os.Exit(0)
		default:
			badColor.Printf("unknown command %q\n", fields[0])
		}
	}
}

func (c *client) handle(ctx context.Context, data []byte) {
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		badColor.Println("bad frame:", err)
		return
	}

	switch env.Type {
	case events.TypeConnected:
		var p events.ConnectedPayload
		json.Unmarshal(env.Data, &p)
		c.playerID = p.PlayerID
		goodColor.Printf("connected as %s (%s)\n", p.Username, p.PlayerID[:8])

	case events.TypeMembershipChanged:
		var p events.MembershipChangedPayload
		json.Unmarshal(env.Data, &p)
		infoColor.Printf("room %s: %d member(s)\n", p.RoomID, len(p.Members))
		if *auto && len(p.Members) >= 2 {
			c.send(ctx, events.TypeSetReady, nil)
		}

	case events.TypeReadinessChanged:
		var p events.ReadinessChangedPayload
		json.Unmarshal(env.Data, &p)
		ready := 0
		for _, m := range p.Members {
			if m.Ready {
				ready++
			}
		}
		infoColor.Printf("ready %d/%d\n", ready, len(p.Members))
		if *auto {
			c.send(ctx, events.TypeSetReady, nil)
		}

	case events.TypeMemberLeft:
		var p events.MemberLeftPayload
		json.Unmarshal(env.Data, &p)
		infoColor.Printf("player left, %d remain\n", len(p.Members))

	case events.TypeGameStarting:
		var p events.GameStartingPayload
		json.Unmarshal(env.Data, &p)
		gameColor.Printf("game starting in %ds\n", p.CountdownSeconds)

	case events.TypeRoundStarted:
		var p events.RoundStartedPayload
		json.Unmarshal(env.Data, &p)
		gameColor.Printf("round %d (%s): wait %dms, target +%dms\n",
			p.RoundNumber, p.RoundType, p.WaitTimeMs, p.TargetOffsetMs)
		if *auto {
			go c.autoSubmit(ctx, p)
		}

	case events.TypeSubmissionAck:
		var p events.SubmissionAckPayload
		json.Unmarshal(env.Data, &p)
		goodColor.Printf("off by %dms, +%d points\n", p.AccuracyMs, p.Score)

	case events.TypeRoundEnded:
		var p events.RoundEndedPayload
		json.Unmarshal(env.Data, &p)
		for i, r := range p.RankedResults {
			if r.AccuracyMs == nil {
				badColor.Printf("  %d. %s — no submission\n", i+1, r.Username)
				continue
			}
			boardColor.Printf("  %d. %s — %dms (+%d)\n", i+1, r.Username, *r.AccuracyMs, r.Score)
		}

	case events.TypeGameEnded:
		var p events.GameEndedPayload
		json.Unmarshal(env.Data, &p)
		gameColor.Println("final standings:")
		for i, s := range p.FinalStandings {
			boardColor.Printf("  %d. %s — %d points\n", i+1, s.Username, s.Score)
		}
		if len(p.TopLeaderboard) > 0 {
			infoColor.Println("all-time best accuracy:")
			for i, row := range p.TopLeaderboard {
				boardColor.Printf("  %d. %s — %dms over %d game(s)\n",
					i+1, row.Username, row.BestAccuracyMs, row.GamesPlayed)
			}
		}

	case events.TypeGameAborted:
		var p events.GameAbortedPayload
		json.Unmarshal(env.Data, &p)
		badColor.Printf("game aborted: %s\n", p.Reason)

	case events.TypeRoomReset:
		infoColor.Println("back in the lobby")
		if *auto {
			c.send(ctx, events.TypeSetReady, nil)
		}

	case events.TypeError:
		var p events.ErrorPayload
		json.Unmarshal(env.Data, &p)
		badColor.Printf("error [%s]: %s\n", p.Code, p.Message)

	default:
		fmt.Printf("%s\n", data)
	}
}

// autoSubmit waits out the round's delay plus the hidden target, with a
// little jitter so scores vary, then submits.
func (c *client) autoSubmit(ctx context.Context, p events.RoundStartedPayload) {
	jitter := time.Duration(rand.Intn(120)-60) * time.Millisecond
	delay := time.Duration(p.WaitTimeMs+p.TargetOffsetMs)*time.Millisecond + jitter
	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}
	c.send(ctx, events.TypeSubmit, events.SubmitPayload{ClientTimestampMs: time.Now().UnixMilli()})
}
