package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/heavensdreams/rental-api/config"
	"github.com/heavensdreams/rental-api/middleware"
	"github.com/heavensdreams/rental-api/models"
	"github.com/heavensdreams/rental-api/services"
)

const maxPhotoBytes = 10 << 20

type PhotoHandler struct {
	Store *config.Store
	WS    *WSHandler
	Dir   string
}

// Upload stores an apartment photo under a content-derived name and writes
// a 300px thumbnail next to it. Re-uploading identical bytes is a no-op.
func (h *PhotoHandler) Upload(c *gin.Context) {
	apartmentID := c.Param("id")

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing photo file"})
		return
	}
	if fileHeader.Size > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Photo exceeds 10MB limit"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxPhotoBytes+1))
	if err != nil || int64(len(data)) > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is not a supported image"})
		return
	}

	sum := sha256.Sum256(data)
	photoID := hex.EncodeToString(sum[:])[:16]
	fileName := photoID + ".jpg"
	thumbName := photoID + "_thumb.jpg"

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload directory"})
		return
	}
	if err := imaging.Save(img, filepath.Join(h.Dir, fileName)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo"})
		return
	}
	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(h.Dir, thumbName)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save thumbnail"})
		return
	}

	actorID := middleware.GetUserID(c)
	photo := models.Photo{
		ID:         photoID,
		FileName:   fileName,
		ThumbName:  thumbName,
		UploadedAt: time.Now().UTC(),
	}

	err = h.Store.Mutate(func(doc *models.Document) error {
		apartment := doc.ApartmentByID(apartmentID)
		if apartment == nil {
			return errApartmentNotFound
		}
		for _, p := range apartment.Photos {
			if p.ID == photoID {
				return nil // identical content already attached
			}
		}
		apartment.Photos = append(apartment.Photos, photo)
		services.RecordLog(doc, actorID, "upload", entityPhoto, photoID, nil, photo)
		return nil
	})
	if err == errApartmentNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Apartment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach photo"})
		return
	}

	h.WS.BroadcastUpdate(entityApartment, "updated", apartmentID, actorID)
	c.JSON(http.StatusCreated, photo)
}

// Delete detaches the photo and removes its files. File removal is best
// effort: the document entry is authoritative.
func (h *PhotoHandler) Delete(c *gin.Context) {
	apartmentID := c.Param("id")
	photoID := c.Param("photo_id")
	actorID := middleware.GetUserID(c)

	var removed models.Photo
	err := h.Store.Mutate(func(doc *models.Document) error {
		apartment := doc.ApartmentByID(apartmentID)
		if apartment == nil {
			return errApartmentNotFound
		}
		idx := -1
		for i := range apartment.Photos {
			if apartment.Photos[i].ID == photoID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errPhotoNotFound
		}
		removed = apartment.Photos[idx]
		apartment.Photos = append(apartment.Photos[:idx], apartment.Photos[idx+1:]...)
		services.RecordLog(doc, actorID, "delete", entityPhoto, photoID, removed, nil)
		return nil
	})
	switch err {
	case nil:
	case errApartmentNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Apartment not found"})
		return
	case errPhotoNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo"})
		return
	}

	_ = os.Remove(filepath.Join(h.Dir, removed.FileName))
	if removed.ThumbName != "" {
		_ = os.Remove(filepath.Join(h.Dir, removed.ThumbName))
	}

	h.WS.BroadcastUpdate(entityApartment, "updated", apartmentID, actorID)
	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}
