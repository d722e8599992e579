// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package simulator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ffutop/mc-protocol/transport"
)

// Serve answers requests on every server until ctx is done, then closes the
// servers and saves the memory to storage.
func (s *Simulator) Serve(ctx context.Context, servers ...transport.Server) error {
	var wg sync.WaitGroup
	for i, srv := range servers {
		wg.Add(1)
		go func(srv transport.Server, idx int) {
			defer wg.Done()
			slog.Info("Starting listener", "index", idx)
			if err := srv.Start(ctx, s.Handle); err != nil {
				slog.Error("Listener stopped with error", "index", idx, "err", err)
			}
		}(srv, i)
	}

	<-ctx.Done()

	for _, srv := range servers {
		srv.Close()
	}
	wg.Wait()

	return s.storage.Save(s.memory)
}
