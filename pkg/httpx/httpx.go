// Package httpx holds the fiber helpers shared by the api packages
package httpx

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/iam"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// ParamID reads a positive numeric path parameter
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	id, ok := kernel.ParseInt64ID(c.Params(name))
	if !ok {
		return 0, iam.ErrInvalidID(name)
	}
	return id, nil
}

// PageOf reads limit and offset from the query string
func PageOf(c *fiber.Ctx) kernel.Page {
	return kernel.NewPage(c.QueryInt("limit", kernel.DefaultPageLimit), c.QueryInt("offset", 0))
}

// Bind parses the JSON body into v
func Bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return iam.ErrInvalidBody().WithDetail("error", err.Error())
	}
	return nil
}

// NotImplemented answers full replacement requests; resources are edited
// with PATCH
func NotImplemented(*fiber.Ctx) error {
	return iam.ErrNotImplemented()
}

// Upload reads a multipart file field fully into memory. A missing field
// yields empty data and no error; services report it in their own terms.
func Upload(c *fiber.Ctx, field string) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, iam.ErrInvalidBody().WithDetail("error", err.Error())
	}
	defer f.Close()

	data := make([]byte, fh.Size)
	if _, err := io.ReadFull(f, data); err != nil {
		return "", nil, iam.ErrInvalidBody().WithDetail("error", err.Error())
	}
	return fh.Filename, data, nil
}
