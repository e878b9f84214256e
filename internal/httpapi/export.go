package httpapi

import (
	"encoding/csv"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/DrJonoG/job-search/internal/store"
)

// csvStreamer runs ExportCSV against a pipe writer on its own
// goroutine so SendStream can read the CSV as it is produced instead
// of buffering the whole export in memory.
func csvStreamer(c *fiber.Ctx, st *store.Store) io.Reader {
	r, w := io.Pipe()
	go func() {
		writer := csv.NewWriter(w)
		err := st.ExportCSV(c.Context(), writer)
		writer.Flush()
		w.CloseWithError(err)
	}()
	return r
}
