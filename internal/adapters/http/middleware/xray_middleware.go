package middleware

import (
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

func XRayMiddleware(segmentName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, seg := xray.BeginSegment(c.Request().Context(), segmentName)
			req := c.Request().Clone(ctx)
			c.SetRequest(req)

			seg.GetHTTP().GetRequest().Method = req.Method
			seg.GetHTTP().GetRequest().URL = req.URL.Path
			err := next(c)
			seg.GetHTTP().GetResponse().Status = c.Response().Status
			if user, ok := CurrentUser(c); ok {
				_ = seg.AddAnnotation("user_id", user.ID)
			}
			seg.Close(err)
			return err
		}
	}
}
