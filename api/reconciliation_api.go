package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/m-islam-ciplc/bank-recon/api/model"
	"github.com/m-islam-ciplc/bank-recon/internal/apierror"
)

// GetBankCodes lists the bank codes with imported statements.
func (a Api) GetBankCodes(c *gin.Context) {
	codes, err := a.recon.GetBankCodes(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_codes": codes})
}

// GetAccountNumbers lists the imported account numbers for one bank.
func (a Api) GetAccountNumbers(c *gin.Context) {
	code, passed := c.Params.Get("code")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bank code is required. pass code in the route /banks/:code/accounts"})
		return
	}

	accounts, err := a.recon.GetAccountNumbers(c.Request.Context(), code)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_code": code, "account_numbers": accounts})
}

// StartBankFinanceRun executes the bank-finance matching stage.
func (a Api) StartBankFinanceRun(c *gin.Context) {
	var req model2.RunReconciliation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.ValidateBankFinanceRun(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := a.recon.StartBankFinanceRun(c.Request.Context(), req.BankCode, req.AccountNumber, req.DryRun)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// StartChainRun extends completed bank-finance groups into the tally ledger.
func (a Api) StartChainRun(c *gin.Context) {
	var req model2.RunReconciliation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.ValidateChainRun(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := a.recon.StartChainRun(c.Request.Context(), req.BankCode, req.AccountNumber, req.DryRun)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// StartChequeRun pairs cheque-bearing bank rows with tally rows.
func (a Api) StartChequeRun(c *gin.Context) {
	var req model2.RunReconciliation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.ValidateChequeRun(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := a.recon.StartChequeRun(c.Request.Context(), req.BankCode, req.AccountNumber, req.DryRun)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// GetRun returns the summary of a run.
func (a Api) GetRun(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run id is required. pass id in the route /reconciliations/:id"})
		return
	}

	summary, err := a.recon.GetRunSummary(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetRunMatches returns the match groups a run produced.
func (a Api) GetRunMatches(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run id is required. pass id in the route /reconciliations/:id/matches"})
		return
	}

	groups, err := a.recon.GetMatchGroups(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": id, "matches": groups})
}
