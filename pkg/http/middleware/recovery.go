package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "SmartShop/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns handler panics into a 500 carrying the panic message. The
// stack goes to the log only.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					l.Error("http handler panic",
						applogger.String("uri", c.Request().RequestURI),
						applogger.Error(perr),
						applogger.String("stack", string(debug.Stack())),
					)
					if c.Response().Committed {
						return
					}
					err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"status":  http.StatusInternalServerError,
						"message": http.StatusText(http.StatusInternalServerError),
						"data":    perr.Error(),
					})
				}
			}()
			return next(c)
		}
	}
}
