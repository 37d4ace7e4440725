package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/pkg/syncstore"
)

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return data
}

func TestWebSocketURLDerivation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name:    "http becomes ws",
			baseURL: "http://localhost:8000",
			want:    "ws://localhost:8000/ws/tasks",
		},
		{
			name:    "https becomes wss",
			baseURL: "https://tasks.example.com",
			want:    "wss://tasks.example.com/ws/tasks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := NewSyncer(NewClient(tt.baseURL), syncstore.NewCollection())
			if syncer.wsURL != tt.want {
				t.Errorf("wsURL = %q, want %q", syncer.wsURL, tt.want)
			}
		})
	}
}

func TestHandleMessage(t *testing.T) {
	collection := syncstore.NewCollection()
	syncer := NewSyncer(NewClient("http://localhost:8000"), collection)

	created := domain.Task{
		ID:        "t1",
		Title:     "Buy milk",
		Status:    domain.StatusTodo,
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("taskCreated adds to collection", func(t *testing.T) {
		err := syncer.handleMessage(serverMessage{
			Event: "taskCreated",
			Data: mustJSON(t, taskEventPayload{
				TaskID: "t1",
				Action: "created",
				Task:   &created,
			}),
		})
		if err != nil {
			t.Fatalf("handleMessage() error = %v", err)
		}
		if _, ok := collection.Get("t1"); !ok {
			t.Error("created task not in collection")
		}
	})

	t.Run("taskStatusChanged moves column", func(t *testing.T) {
		moved := created
		moved.Status = domain.StatusDone
		moved.UpdatedAt = created.UpdatedAt.Add(time.Minute)

		err := syncer.handleMessage(serverMessage{
			Event: "taskStatusChanged",
			Data: mustJSON(t, taskEventPayload{
				TaskID:    "t1",
				Action:    "status_changed",
				Task:      &moved,
				OldStatus: domain.StatusTodo,
				NewStatus: domain.StatusDone,
			}),
		})
		if err != nil {
			t.Fatalf("handleMessage() error = %v", err)
		}
		task, _ := collection.Get("t1")
		if task.Status != domain.StatusDone {
			t.Errorf("Status = %q, want done", task.Status)
		}
	})

	t.Run("taskDeleted removes from collection", func(t *testing.T) {
		err := syncer.handleMessage(serverMessage{
			Event: "taskDeleted",
			Data:  mustJSON(t, taskEventPayload{TaskID: "t1", Action: "deleted"}),
		})
		if err != nil {
			t.Fatalf("handleMessage() error = %v", err)
		}
		if _, ok := collection.Get("t1"); ok {
			t.Error("deleted task still in collection")
		}
	})

	t.Run("rejected authentication is fatal", func(t *testing.T) {
		err := syncer.handleMessage(serverMessage{
			Event: "authenticated",
			Data:  mustJSON(t, authenticatedPayload{Success: false, Error: "invalid or expired token"}),
		})
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("handleMessage() error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("successful authentication continues", func(t *testing.T) {
		err := syncer.handleMessage(serverMessage{
			Event: "authenticated",
			Data:  mustJSON(t, authenticatedPayload{Success: true, UserID: "user-1"}),
		})
		if err != nil {
			t.Errorf("handleMessage() error = %v", err)
		}
	})

	t.Run("unknown events are ignored", func(t *testing.T) {
		err := syncer.handleMessage(serverMessage{Event: "somethingNew", Data: mustJSON(t, map[string]string{})})
		if err != nil {
			t.Errorf("handleMessage() error = %v", err)
		}
	})
}

func TestMoveTaskOptimistic(t *testing.T) {
	t.Run("rolls back on server rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "message": "Task not found"})
		}))
		defer server.Close()

		collection := syncstore.NewCollection()
		syncer := NewSyncer(NewClient(server.URL), collection)

		original := domain.Task{
			ID:        "t1",
			Title:     "Stay put",
			Status:    domain.StatusTodo,
			UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}
		collection.Apply(original)

		err := syncer.MoveTask(context.Background(), "t1", domain.StatusDone)
		if err == nil {
			t.Fatal("MoveTask() succeeded, want error")
		}

		task, _ := collection.Get("t1")
		if task.Status != domain.StatusTodo {
			t.Errorf("Status = %q, want rollback to todo", task.Status)
		}
	})

	t.Run("applies server result on success", func(t *testing.T) {
		serverUpdated := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body UpdateTaskParams
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == nil {
				t.Errorf("bad update body: %v", err)
			}
			json.NewEncoder(w).Encode(domain.Task{
				ID:        "t1",
				Title:     "Stay put",
				Status:    domain.StatusDone,
				UpdatedAt: serverUpdated,
			})
		}))
		defer server.Close()

		collection := syncstore.NewCollection()
		syncer := NewSyncer(NewClient(server.URL), collection)

		collection.Apply(domain.Task{
			ID:        "t1",
			Title:     "Stay put",
			Status:    domain.StatusTodo,
			UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		})

		if err := syncer.MoveTask(context.Background(), "t1", domain.StatusDone); err != nil {
			t.Fatalf("MoveTask() error = %v", err)
		}

		task, _ := collection.Get("t1")
		if task.Status != domain.StatusDone {
			t.Errorf("Status = %q, want done", task.Status)
		}
		if !task.UpdatedAt.Equal(serverUpdated) {
			t.Errorf("UpdatedAt = %v, want server timestamp %v", task.UpdatedAt, serverUpdated)
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		syncer := NewSyncer(NewClient("http://localhost:8000"), syncstore.NewCollection())
		if err := syncer.MoveTask(context.Background(), "nope", domain.StatusDone); err == nil {
			t.Error("MoveTask() succeeded for unknown task")
		}
	})
}
