package ingress

import (
	"net/http"

	"github.com/r3e-network/metasearch/internal/platform/httputil"
)

func writeErr(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}
