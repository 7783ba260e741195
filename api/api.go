package api

import (
	"github.com/gin-gonic/gin"

	recon "github.com/m-islam-ciplc/bank-recon"
	"github.com/m-islam-ciplc/bank-recon/api/middleware"
	"github.com/m-islam-ciplc/bank-recon/config"
)

type Api struct {
	recon  *recon.Recon
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.GET("/banks", a.GetBankCodes)
	router.GET("/banks/:code/accounts", a.GetAccountNumbers)

	router.POST("/reconciliations/bank-finance", a.StartBankFinanceRun)
	router.POST("/reconciliations/chain", a.StartChainRun)
	router.POST("/reconciliations/cheque", a.StartChequeRun)
	router.GET("/reconciliations/:id", a.GetRun)
	router.GET("/reconciliations/:id/matches", a.GetRunMatches)

	return a.router
}

func NewAPI(r *recon.Recon) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	router := gin.Default()
	if conf.Server.Secure {
		router.Use(middleware.SecretKeyAuthMiddleware())
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{recon: r, router: router}
}
