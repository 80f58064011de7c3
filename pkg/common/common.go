package common

import (
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"

	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

func node() *snowflake.Node {
	idNodeOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
		idNode = n
	})
	return idNode
}

// UUIDint64 returns a time ordered unique int64 id
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// UploadName builds a unique storage name for an uploaded file, keeping its extension.
func UploadName(prefix, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return prefix + "-" + strconv.FormatInt(UUIDint64(), 10) + ext
}

// IsEmptyOrNA reports blank strings and the "N/A" placeholder
func IsEmptyOrNA(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "N/A")
}
