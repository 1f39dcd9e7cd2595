package solnotes

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/solnotes/content"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

var imageNamePattern = regexp.MustCompile(`^[a-z0-9-]+\.jpg$`)

// processImage decodes an image from src, resizes it to maxImageWidth when
// wider, and encodes it as JPEG.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	name := imageBaseName(originalName) + ".jpg"
	return Image{Name: name, URL: "/images/" + name, Size: buf.Len()}, buf.Bytes(), nil
}

func imageBaseName(name string) string {
	base := Slugify(strings.TrimSuffix(name, filepath.Ext(name)))
	if base == "" {
		base = "image"
	}
	return base
}

func (a *App) imagePath(name string) string {
	return path.Join(a.Config.ImagesDir, name)
}

func (a *App) listImages(ctx context.Context) ([]Image, error) {
	entries, err := a.backend.List(ctx, a.Config.ImagesDir)
	if err != nil {
		if content.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	images := make([]Image, 0, len(entries))
	for _, e := range entries {
		if e.Type != "file" || !imageNamePattern.MatchString(e.Name) {
			continue
		}
		images = append(images, Image{Name: e.Name, URL: "/images/" + e.Name, SHA: e.SHA})
	}
	return images, nil
}

// uniqueImageName appends a counter until name is unused.
func uniqueImageName(name string, existing []Image) string {
	taken := make(map[string]struct{}, len(existing))
	for _, img := range existing {
		taken[img.Name] = struct{}{}
	}
	base := strings.TrimSuffix(name, ".jpg")
	candidate := name
	for n := 2; ; n++ {
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, n)
	}
}

func (a *App) handleImage(c echo.Context) error {
	name := c.Param("name")
	if !imageNamePattern.MatchString(name) {
		return echo.ErrNotFound
	}
	f, err := a.backend.Read(c.Request().Context(), a.imagePath(name))
	if err != nil {
		if content.IsNotFound(err) {
			return echo.ErrNotFound
		}
		return err
	}
	c.Response().Header().Set("ETag", `"`+f.SHA+`"`)
	return c.Blob(http.StatusOK, "image/jpeg", f.Content)
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return a.renderImageList(c, http.StatusBadRequest, &Notice{Kind: NoticeError, Message: "No image file provided."})
	}
	if file.Size > maxUploadSize {
		return a.renderImageList(c, http.StatusBadRequest, &Notice{Kind: NoticeError, Message: "File too large (max 10MB)."})
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return a.renderImageList(c, http.StatusBadRequest, &Notice{Kind: NoticeError, Message: "Invalid image: " + err.Error()})
	}

	ctx := c.Request().Context()
	existing, err := a.listImages(ctx)
	if err != nil {
		return err
	}
	img.Name = uniqueImageName(img.Name, existing)
	img.URL = "/images/" + img.Name

	if _, err := a.backend.Write(ctx, a.imagePath(img.Name), data, "Add image: "+img.Name, ""); err != nil {
		_, msg := failureStatus(err)
		a.logger.Error("image upload failed", "name", img.Name, "error", err)
		return a.renderImageList(c, http.StatusInternalServerError, &Notice{Kind: NoticeError, Message: msg})
	}
	a.logger.Info("image uploaded", "name", img.Name, "size", img.Size)
	return a.renderImageList(c, http.StatusOK, &Notice{Kind: NoticeSuccess, Message: "Uploaded " + img.URL})
}

func (a *App) handleImageDelete(c echo.Context) error {
	name := c.Param("name")
	if !imageNamePattern.MatchString(name) {
		return a.renderImageList(c, http.StatusBadRequest, &Notice{Kind: NoticeError, Message: "Invalid image name."})
	}
	ctx := c.Request().Context()
	p := a.imagePath(name)
	f, err := a.backend.Read(ctx, p)
	if err == nil {
		err = a.backend.Delete(ctx, p, "Delete image: "+name, f.SHA)
	}
	if err != nil {
		code, msg := failureStatus(err)
		if content.IsNotFound(err) {
			msg = "Image not found."
		}
		return a.renderImageList(c, code, &Notice{Kind: NoticeError, Message: msg})
	}
	return a.renderImageList(c, http.StatusOK, &Notice{Kind: NoticeSuccess, Message: "Deleted " + name})
}

func (a *App) handleImageList(c echo.Context) error {
	return a.renderImageList(c, http.StatusOK, nil)
}

func (a *App) renderImageList(c echo.Context, code int, notice *Notice) error {
	images, err := a.listImages(c.Request().Context())
	if err != nil {
		return err
	}
	return RenderStatus(c, code, a.Views.AdminImages(AdminImagesPage{
		Page:   a.page(c, "Images", "", "/admin/images/", "website"),
		Images: images,
		Notice: notice,
	}))
}
