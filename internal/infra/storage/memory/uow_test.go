package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"hems/internal/app/uow"
	domainroom "hems/internal/domain/room"
	"hems/internal/domain/shared/money"
)

func newRoom(t *testing.T, id, number string) *domainroom.Room {
	t.Helper()
	rm, err := domainroom.NewRoom(domainroom.CreateParams{
		ID:        domainroom.RoomID(id),
		Number:    number,
		Type:      "single",
		Rate:      money.Must(9000, "USD"),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}
	rm.ClearEvents()
	return rm
}

func TestCommitPublishesChanges(t *testing.T) {
	factory := Factory{Store: NewStore()}
	ctx := context.Background()

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := unit.Rooms().Save(ctx, newRoom(t, "room-1", "101")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	reader, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		t.Fatalf("begin read: %v", err)
	}
	defer reader.Rollback(ctx)
	if _, err := reader.Rooms().ByID(ctx, "room-1"); err != nil {
		t.Fatalf("committed room not visible: %v", err)
	}
}

func TestRollbackDiscardsChanges(t *testing.T) {
	factory := Factory{Store: NewStore()}
	ctx := context.Background()

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := unit.Rooms().Save(ctx, newRoom(t, "room-1", "101")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := unit.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	reader, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		t.Fatalf("begin read: %v", err)
	}
	defer reader.Rollback(ctx)
	if _, err := reader.Rooms().ByID(ctx, "room-1"); !errors.Is(err, domainroom.ErrNotFound) {
		t.Fatalf("rolled back room visible: %v", err)
	}
}

func TestWriteUnitsSerialize(t *testing.T) {
	factory := Factory{Store: NewStore()}
	ctx := context.Background()

	first, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := first.Rooms().Save(ctx, newRoom(t, "room-1", "101")); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The second writer must not start until the first commits.
	started := make(chan struct{})
	saw := make(chan error, 1)
	go func() {
		close(started)
		unit, err := factory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			saw <- err
			return
		}
		defer unit.Rollback(ctx)
		_, err = unit.Rooms().ByID(ctx, "room-1")
		saw <- err
	}()

	<-started
	time.Sleep(10 * time.Millisecond)
	select {
	case <-saw:
		t.Fatal("second writer ran before the first committed")
	default:
	}

	if err := first.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := <-saw; err != nil {
		t.Fatalf("second writer must see the committed room: %v", err)
	}
}

func TestSaveEnforcesUniqueNumber(t *testing.T) {
	factory := Factory{Store: NewStore()}
	ctx := context.Background()

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer unit.Rollback(ctx)
	if err := unit.Rooms().Save(ctx, newRoom(t, "room-1", "101")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := unit.Rooms().Save(ctx, newRoom(t, "room-2", "101")); !errors.Is(err, domainroom.ErrNumberTaken) {
		t.Fatalf("duplicate number: got %v, want ErrNumberTaken", err)
	}
}

func TestSaveBumpsVersion(t *testing.T) {
	factory := Factory{Store: NewStore()}
	ctx := context.Background()

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer unit.Rollback(ctx)

	rm := newRoom(t, "room-1", "101")
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rm.Version != 1 {
		t.Fatalf("version = %d, want 1", rm.Version)
	}
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if rm.Version != 2 {
		t.Fatalf("version = %d, want 2", rm.Version)
	}
}

func TestStagedWritesInvisibleUntilCommit(t *testing.T) {
	store := NewStore()
	factory := Factory{Store: store}
	ctx := context.Background()

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := unit.Rooms().Save(ctx, newRoom(t, "room-1", "101")); err != nil {
		t.Fatalf("save: %v", err)
	}
	// The live dataset is untouched while the write is only staged.
	if _, ok := store.data.rooms["room-1"]; ok {
		t.Fatal("staged write leaked into the live dataset")
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, ok := store.data.rooms["room-1"]; !ok {
		t.Fatal("commit did not publish the staged write")
	}
}
