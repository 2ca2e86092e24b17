package response

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/log"
	"gorm.io/gorm"
)

// HandleDBError handles common database errors with consistent responses
// Returns nil if no error, otherwise returns appropriate error response
func HandleDBError(err error, req *evo.Request, notFoundMsg string, context string) interface{} {
	if err == nil {
		return nil
	}

	// Log the error for debugging
	log.Error("%s: %v", context, err)

	if err == gorm.ErrRecordNotFound {
		return NotFound(req, notFoundMsg)
	}

	return Error(ErrInternalError)
}
