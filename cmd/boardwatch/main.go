// Command boardwatch tails a project board from a terminal. It signs
// in, loads the board snapshot, then follows the SSE stream and prints
// every change as it lands.
//
// Usage:
//
//	boardwatch -base http://localhost:8080 -email you@example.com \
//	    -password secret -org 64f... -project 64f...
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/boardsync"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// reconnectDelay is how long to wait before redialing a dropped stream.
const reconnectDelay = 2 * time.Second

type client struct {
	base    string
	org     string
	project string
	http    *http.Client
}

func (c *client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

func (c *client) login(ctx context.Context, email, password string) error {
	resp, err := c.postJSON(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: %s", resp.Status)
	}
	return nil
}

func (c *client) fetchBoard(ctx context.Context, projectID string) ([]models.Task, error) {
	url := fmt.Sprintf("%s/orgs/%s/projects/%s/board", c.base, c.org, projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("board fetch failed: %s", resp.Status)
	}

	var board struct {
		Columns []struct {
			Status string        `json:"status"`
			Tasks  []models.Task `json:"tasks"`
		} `json:"columns"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return nil, err
	}

	var tasks []models.Task
	for _, col := range board.Columns {
		tasks = append(tasks, col.Tasks...)
	}
	return tasks, nil
}

// MoveTask lets the boardsync snapshot commit drags through the API.
func (c *client) MoveTask(ctx context.Context, taskID, status string, position int) error {
	resp, err := c.postJSON(ctx, fmt.Sprintf("/orgs/%s/tasks/%s/move", c.org, taskID), map[string]any{
		"status":   status,
		"position": position,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("move failed: %s", resp.Status)
	}
	return nil
}

// follow reads SSE frames until the stream drops or ctx is cancelled,
// feeding board events into the snapshot.
func (c *client) follow(ctx context.Context, board *boardsync.Board, logger *zap.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/stream?orgId="+c.org, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream refused: %s", resp.Status)
	}
	logger.Info("stream connected")

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev realtime.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			logger.Warn("malformed frame", zap.Error(err))
			continue
		}
		if skip, err := c.otherProject(ev); err != nil {
			logger.Warn("malformed payload", zap.String("event", ev.Name), zap.Error(err))
			continue
		} else if skip {
			continue
		}
		before := board.Len()
		if err := board.ApplyEvent(ev); err != nil {
			logger.Warn("event not applied", zap.String("event", ev.Name), zap.Error(err))
			continue
		}
		printEvent(ev, board, before)
	}
	return scanner.Err()
}

// otherProject reports whether a task event belongs to a different
// project than the one being watched.
func (c *client) otherProject(ev realtime.Event) (bool, error) {
	switch ev.Name {
	case realtime.EventTaskCreated, realtime.EventTaskUpdated,
		realtime.EventTaskMoved, realtime.EventTaskAssigned, realtime.EventTaskDeleted:
		var task models.Task
		if err := json.Unmarshal(ev.Payload, &task); err != nil {
			return true, err
		}
		return task.ProjectID.Hex() != c.project, nil
	default:
		return false, nil
	}
}

func printEvent(ev realtime.Event, board *boardsync.Board, before int) {
	switch ev.Name {
	case realtime.EventTaskCreated, realtime.EventTaskUpdated,
		realtime.EventTaskMoved, realtime.EventTaskAssigned, realtime.EventTaskDeleted:
		var task models.Task
		_ = json.Unmarshal(ev.Payload, &task)
		fmt.Printf("%s  %-14s %-30q %s#%d  (%d tasks",
			time.Now().Format("15:04:05"), ev.Name, task.Title, task.Status, task.Position, board.Len())
		if diff := board.Len() - before; diff != 0 {
			fmt.Printf(", %+d", diff)
		}
		fmt.Println(")")
	default:
		fmt.Printf("%s  %-14s\n", time.Now().Format("15:04:05"), ev.Name)
	}
}

func main() {
	var (
		base     = flag.String("base", "http://localhost:8080", "FlowDesk API base URL")
		email    = flag.String("email", "", "account email")
		password = flag.String("password", "", "account password")
		org      = flag.String("org", "", "organization id (hex)")
		project  = flag.String("project", "", "project id (hex)")
	)
	flag.Parse()
	if *email == "" || *password == "" || *org == "" || *project == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	jar, err := cookiejar.New(nil)
	if err != nil {
		logger.Fatal("cookie jar", zap.Error(err))
	}
	c := &client{base: strings.TrimRight(*base, "/"), org: *org, project: *project, http: &http.Client{Jar: jar}}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.login(ctx, *email, *password); err != nil {
		logger.Fatal("login", zap.Error(err))
	}

	board := boardsync.New(c, logger)
	tasks, err := c.fetchBoard(ctx, *project)
	if err != nil {
		logger.Fatal("board fetch", zap.Error(err))
	}
	board.Load(tasks)
	fmt.Printf("watching board with %d tasks\n", board.Len())

	for {
		err := c.follow(ctx, board, logger)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("stream dropped", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}

		// Refresh the snapshot after a gap; events may have been missed.
		if tasks, err := c.fetchBoard(ctx, *project); err == nil {
			board.Load(tasks)
		}
	}
}
