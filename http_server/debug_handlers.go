package http_server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danthegoodman1/tablemap/datastore"
	"github.com/danthegoodman1/tablemap/part"
	"github.com/danthegoodman1/tablemap/utils"
)

func (s *HTTPServer) GetColumnsForNamespace(c *CustomContext) error {
	ns := c.Param("ns")

	columns, err := s.MetaStore.GetColumns(c.Request().Context(), ns)
	if err != nil {
		return c.InternalError(err, "error getting columns")
	}

	return c.JSON(http.StatusOK, utils.ArrayOrEmpty(columns))
}

func (s *HTTPServer) GetNamespaces(c *CustomContext) error {
	namespaces, err := s.MetaStore.ListNamespaces(c.Request().Context())
	if err != nil {
		return c.InternalError(err, "error getting namespaces")
	}

	return c.JSON(http.StatusOK, utils.ArrayOrEmpty(namespaces))
}

var ErrInvalidPartPath = errors.New("invalid partition or file name")

// GetPartFile downloads a stored part, addressed by the `partition` and `name`
// query params
func (s *HTTPServer) GetPartFile(c *CustomContext) error {
	partition := c.QueryParam("partition")
	name := c.QueryParam("name")
	if !validPartSegment(name) {
		return c.BadRequest(ErrInvalidPartPath)
	}
	if partition != "" {
		for _, seg := range strings.Split(partition, "/") {
			if !validPartSegment(seg) {
				return c.BadRequest(ErrInvalidPartPath)
			}
		}
	}

	b, err := s.DataStore.ReadFile(c.Request().Context(), part.FilePath(c.Param("ns"), partition, name))
	if errors.Is(err, datastore.ErrFileNotFound) {
		return c.String(http.StatusNotFound, "file not found")
	}
	if err != nil {
		return c.InternalError(err, "error reading file")
	}

	return c.Blob(http.StatusOK, "application/octet-stream", b)
}

func validPartSegment(seg string) bool {
	return seg != "" && seg != "." && seg != ".." && !strings.ContainsAny(seg, "/\\")
}
