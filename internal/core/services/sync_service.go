package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/okrasimirov/rota/internal/adapters/kvstore"
	"github.com/okrasimirov/rota/internal/core/domain"
)

var (
	ErrSyncInProgress = errors.New("another sync operation is in progress")
	ErrNoLocalSyncID  = errors.New("this device has never synced")
)

// syncIDKey is the store entry remembering the last uploaded snapshot.
const syncIDKey = "sync:id"

type SnapshotClient interface {
	Upload(ctx context.Context, snapshot map[string]string) (string, error)
	Download(ctx context.Context, syncID string) (map[string]string, error)
}

type AssetRestorer interface {
	RestoreAll(ctx context.Context) (restored, failed int, err error)
}

// SyncService moves the whole persistent store to and from the remote
// snapshot service. Upload and download are mutually exclusive: only one
// sync operation may run at a time, so the atomic-replace step never
// interleaves with another sync.
type SyncService struct {
	store        kvstore.Store
	client       SnapshotClient
	rotationRepo domain.RotationRepository
	assets       AssetRestorer
	now          func() time.Time

	inFlight sync.Mutex
}

func NewSyncService(
	store kvstore.Store,
	client SnapshotClient,
	rotationRepo domain.RotationRepository,
	assets AssetRestorer,
	now func() time.Time,
) *SyncService {
	if now == nil {
		now = time.Now
	}
	return &SyncService{
		store:        store,
		client:       client,
		rotationRepo: rotationRepo,
		assets:       assets,
		now:          now,
	}
}

// Upload serializes the entire store and sends it to the snapshot
// service. The sync timestamp is stamped before the snapshot is taken so
// the uploaded data carries it. Returns the identifier assigned by the
// service, which is also remembered locally.
func (s *SyncService) Upload(ctx context.Context) (string, error) {
	if !s.inFlight.TryLock() {
		return "", ErrSyncInProgress
	}
	defer s.inFlight.Unlock()

	if err := s.rotationRepo.SetLastSync(ctx, s.now().UTC()); err != nil {
		return "", fmt.Errorf("stamp sync time: %w", err)
	}

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot store: %w", err)
	}

	syncID, err := s.client.Upload(ctx, snapshot)
	if err != nil {
		return "", err
	}

	if err := s.store.Set(ctx, syncIDKey, syncID); err != nil {
		return "", fmt.Errorf("remember sync id: %w", err)
	}

	log.Debugf("snapshot uploaded, sync id %s", syncID)
	return syncID, nil
}

// Download fetches a snapshot and atomically replaces the local store
// with it; a failure anywhere leaves the previous store untouched. An
// empty syncID falls back to the identifier of this device's last upload.
// After the swap, exercise images are re-materialized best effort.
func (s *SyncService) Download(ctx context.Context, syncID string) error {
	if !s.inFlight.TryLock() {
		return ErrSyncInProgress
	}
	defer s.inFlight.Unlock()

	if syncID == "" {
		localID, err := s.localSyncID(ctx)
		if err != nil {
			return err
		}
		syncID = localID
	}

	snapshot, err := s.client.Download(ctx, syncID)
	if err != nil {
		return err
	}

	if err := s.store.ReplaceAll(ctx, snapshot); err != nil {
		return fmt.Errorf("apply snapshot: %w", err)
	}

	// Local image files are not part of the snapshot, only their source
	// URLs are. Restore failures do not fail the download.
	if _, _, err := s.assets.RestoreAll(ctx); err != nil {
		log.Errorf("image restore after download failed: %v", err)
	}

	log.Debugf("snapshot %s applied", syncID)
	return nil
}

// LocalSyncID returns the identifier of the last successful upload from
// this device, or ErrNoLocalSyncID.
func (s *SyncService) LocalSyncID(ctx context.Context) (string, error) {
	return s.localSyncID(ctx)
}

func (s *SyncService) localSyncID(ctx context.Context) (string, error) {
	syncID, err := s.store.Get(ctx, syncIDKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return "", ErrNoLocalSyncID
		}
		return "", fmt.Errorf("load sync id: %w", err)
	}
	return syncID, nil
}
