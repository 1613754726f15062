package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/repository"
	"github.com/encetamasb/TheSpaghettiDetective/internal/statuscache"
)

// deviceLockShards bounds the lock table; reports for devices on
// different shards never contend.
const deviceLockShards = 64

// keyedMutex serializes work per device without a global lock. Two
// devices may share a stripe, which only costs throughput, never
// ordering.
type keyedMutex struct {
	shards [deviceLockShards]sync.Mutex
}

func (m *keyedMutex) lock(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &m.shards[h.Sum32()%deviceLockShards]
	mu.Lock()
	return mu
}

// IngestService is the pipeline behind the sole ingestion entry point:
// normalize, persist settings, cache, track lifecycle, dispatch,
// broadcast. Reports for one device run strictly in delivery order.
type IngestService struct {
	normalizer *NormalizerService
	lifecycle  *LifecycleService
	settings   repository.SettingsRepo
	cache      *statuscache.Cache
	hub        *BroadcastHub
	sender     *WebhookSender
	statusTTL  time.Duration
	locks      keyedMutex
}

func NewIngestService(
	normalizer *NormalizerService,
	lifecycle *LifecycleService,
	settings repository.SettingsRepo,
	cache *statuscache.Cache,
	hub *BroadcastHub,
	sender *WebhookSender,
	statusTTL time.Duration,
) *IngestService {
	if statusTTL <= 0 {
		statusTTL = statuscache.DefaultTTL
	}
	return &IngestService{
		normalizer: normalizer,
		lifecycle:  lifecycle,
		settings:   settings,
		cache:      cache,
		hub:        hub,
		sender:     sender,
		statusTTL:  statusTTL,
	}
}

// Report processes one raw telemetry report for an already
// authenticated device. On a persistence error the report fails as a
// whole and a retry reproduces the same decisions.
func (s *IngestService) Report(ctx context.Context, device *models.DeviceIdentity, format models.SourceFormat, raw []byte) error {
	mu := s.locks.lock(device.ID)
	defer mu.Unlock()

	normalized, err := s.normalizer.Normalize(device.ID, format, raw)
	if err != nil {
		return err
	}

	if len(normalized.Settings) > 0 {
		if err := s.settings.Upsert(ctx, device.ID, normalized.Settings); err != nil {
			return err
		}
	}

	if normalized.Offline {
		// A dead source means delete, not just expire; a stale entry
		// must not outlive an explicit "nothing to report".
		s.cache.Delete(device.ID)
		s.hub.Push(device.ID)
		return nil
	}

	s.cache.Set(device.ID, normalized.Status, s.statusTTL)

	if normalized.Status.HasSession() {
		_, calls, err := s.lifecycle.Apply(ctx, device, normalized.Status)
		if err != nil {
			return err
		}
		// Delivery is best-effort and never rolls back lifecycle
		// state.
		s.sender.Enqueue(calls)
	}

	s.hub.Push(device.ID)
	return nil
}
