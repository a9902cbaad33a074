// reload.go — сервис периодического перечитывания файла карты.
//
// ReloadService запускает фоновую горутину с ticker (KJA_RELOAD_INTERVAL),
// которая вызывает Rebuild у оверлея. Ошибка перечитывания логируется,
// текущий снапшот при этом остаётся в работе.
//
// Prometheus-метрики:
//   - kja_map_reloads_total{status} — количество перечитываний
//   - kja_map_reload_duration_seconds — длительность построения снапшота
package overlay

import (
	"context"
	"log/slog"
	"time"
)

// ReloadService — фоновый сервис перечитывания карты.
type ReloadService struct {
	driver   *Driver
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewReloadService создаёт сервис перечитывания карты.
func NewReloadService(driver *Driver, interval time.Duration, logger *slog.Logger) *ReloadService {
	return &ReloadService{
		driver:   driver,
		interval: interval,
		logger:   logger.With(slog.String("component", "map_reload")),
	}
}

// Start запускает фоновую горутину с периодическим перечитыванием.
func (s *ReloadService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		s.logger.Info("Периодическое перечитывание карты запущено",
			slog.String("interval", s.interval.String()),
		)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Периодическое перечитывание карты остановлено")
				return
			case <-ticker.C:
				if err := s.ReloadNow(ctx); err != nil {
					s.logger.Error("Ошибка перечитывания карты",
						slog.String("error", err.Error()),
					)
				}
			}
		}
	}()
}

// Stop останавливает фоновую горутину и ждёт завершения.
func (s *ReloadService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

// ReloadNow выполняет немедленное перечитывание карты.
func (s *ReloadService) ReloadNow(ctx context.Context) error {
	if err := s.driver.Rebuild(ctx); err != nil {
		return err
	}

	st := s.driver.Stats()
	s.logger.Info("Карта перечитана",
		slog.Int("users", st.Users),
		slog.Int("pairs", st.Pairs),
	)
	return nil
}
