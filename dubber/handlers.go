package dubber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/dubbing/pkg/common"
)

// requestTimeout bounds one upload: two synthesis calls plus storage.
const requestTimeout = 5 * time.Minute

func (d *Dubber) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Title": "Transcript dubbing"})
}

func (d *Dubber) handleUploadCSV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, common.MaxUploadSize)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respError(c, http.StatusRequestEntityTooLarge, "File is too large.")
			return
		}
		respError(c, http.StatusBadRequest, "No file uploaded.")
		return
	}
	source := c.PostForm("source")
	if strings.TrimSpace(source) == "" {
		respError(c, http.StatusBadRequest, "Missing source locale.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		respError(c, http.StatusBadRequest, fmt.Sprintf("Error reading upload: %v", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respError(c, http.StatusBadRequest, fmt.Sprintf("Error reading upload: %v", err))
		return
	}
	log.Debugf("Upload %s: %d bytes, source %q", fh.Filename, len(data), source)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	res, err := d.pipeline.Process(ctx, data, source)
	if err != nil {
		log.Errorf("Error processing file: %v", err)
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			respError(c, statusFor(err), reqErr.Msg)
			return
		}
		respError(c, statusFor(err), fmt.Sprintf("Error processing file: %v", err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func respError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
