package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// AdminHeader carries the identity of the acting admin.
const AdminHeader = "X-Admin-ID"

// AdminParams are the parameters shared by every admin operation.
type AdminParams struct {
	XAdminID string
}

// GetLedgerParams defines parameters for GetLedger.
type GetLedgerParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// GetLeaderboardParams defines parameters for GetLeaderboard.
type GetLeaderboardParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// GetAdminUserParams defines parameters for GetAdminUser.
type GetAdminUserParams struct {
	XAdminID string
	Limit    *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// ListAuditLogParams defines parameters for ListAuditLog.
type ListAuditLogParams struct {
	XAdminID string
	AdminId  *string `form:"admin_id,omitempty" json:"admin_id,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /users)
	CreateUser(w http.ResponseWriter, r *http.Request)
	// (GET /users/{userId})
	GetUser(w http.ResponseWriter, r *http.Request, userId string)
	// (GET /users/{userId}/tasks)
	GetTaskStatus(w http.ResponseWriter, r *http.Request, userId string)
	// (POST /users/{userId}/tasks)
	CompleteTask(w http.ResponseWriter, r *http.Request, userId string)
	// (POST /users/{userId}/withdrawals)
	RequestWithdrawal(w http.ResponseWriter, r *http.Request, userId string)
	// (POST /users/{userId}/bonus/unlock)
	UnlockBonus(w http.ResponseWriter, r *http.Request, userId string)
	// (POST /users/{userId}/kyc)
	SubmitKyc(w http.ResponseWriter, r *http.Request, userId string)
	// (POST /users/{userId}/plan)
	PurchasePlan(w http.ResponseWriter, r *http.Request, userId string)
	// (GET /users/{userId}/ledger)
	GetLedger(w http.ResponseWriter, r *http.Request, userId string, params GetLedgerParams)
	// (GET /leaderboard/{timeframe})
	GetLeaderboard(w http.ResponseWriter, r *http.Request, timeframe string, params GetLeaderboardParams)
	// (GET /plans)
	ListPlans(w http.ResponseWriter, r *http.Request)

	// (GET /admin/me)
	GetAdminMe(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (GET /admin/dashboard)
	GetDashboard(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (GET /admin/withdrawals)
	ListWithdrawals(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (POST /admin/withdrawals/{requestId})
	ProcessWithdrawal(w http.ResponseWriter, r *http.Request, requestId string, params AdminParams)
	// (GET /admin/kyc)
	ListPendingKyc(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (POST /admin/kyc/{userId})
	ReviewKyc(w http.ResponseWriter, r *http.Request, userId string, params AdminParams)
	// (GET /admin/users)
	ListUsers(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (GET /admin/users/{userId})
	GetAdminUser(w http.ResponseWriter, r *http.Request, userId string, params GetAdminUserParams)
	// (PUT /admin/users/{userId}/status)
	SetUserStatus(w http.ResponseWriter, r *http.Request, userId string, params AdminParams)
	// (POST /admin/users/{userId}/adjustments)
	AdjustBalance(w http.ResponseWriter, r *http.Request, userId string, params AdminParams)
	// (GET /admin/emergency)
	GetEmergencyState(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (PUT /admin/emergency)
	ToggleEmergency(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (GET /admin/settings)
	GetSettings(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (PUT /admin/settings)
	UpdateSettings(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (GET /admin/audit)
	ListAuditLog(w http.ResponseWriter, r *http.Request, params ListAuditLogParams)
	// (GET /admin/admins)
	ListAdmins(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (POST /admin/admins)
	CreateAdmin(w http.ResponseWriter, r *http.Request, params AdminParams)
	// (DELETE /admin/admins/{adminId})
	DeleteAdmin(w http.ResponseWriter, r *http.Request, adminId string, params AdminParams)
	// (POST /admin/leaderboard/{timeframe}/award)
	AwardLeaderboard(w http.ResponseWriter, r *http.Request, timeframe string, params AdminParams)
}

// MiddlewareFunc wraps a single operation.
type MiddlewareFunc func(http.Handler) http.Handler

// InvalidParamFormatError is reported when a parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ServerInterfaceWrapper converts HTTP requests to typed handler calls.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	var handler http.Handler = fn
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// adminParam binds the admin header. A missing header leaves dest empty; the
// admin service rejects that as forbidden.
func (siw *ServerInterfaceWrapper) adminParam(w http.ResponseWriter, r *http.Request, dest *string) bool {
	valueList, found := r.Header[http.CanonicalHeaderKey(AdminHeader)]
	if !found || len(valueList) == 0 {
		return true
	}
	err := runtime.BindStyledParameterWithOptions("simple", AdminHeader, valueList[0], dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: AdminHeader, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) queryParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// userOp adapts an operation that takes the {userId} path parameter.
func (siw *ServerInterfaceWrapper) userOp(op func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userId string
		if !siw.pathParam(w, r, "userId", &userId) {
			return
		}
		siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) { op(w, r, userId) })
	}
}

// adminOp adapts an admin operation without path parameters.
func (siw *ServerInterfaceWrapper) adminOp(op func(http.ResponseWriter, *http.Request, AdminParams)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params AdminParams
		if !siw.adminParam(w, r, &params.XAdminID) {
			return
		}
		siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) { op(w, r, params) })
	}
}

// adminPathOp adapts an admin operation with one path parameter.
func (siw *ServerInterfaceWrapper) adminPathOp(name string, op func(http.ResponseWriter, *http.Request, string, AdminParams)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		if !siw.pathParam(w, r, name, &id) {
			return
		}
		var params AdminParams
		if !siw.adminParam(w, r, &params.XAdminID) {
			return
		}
		siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) { op(w, r, id, params) })
	}
}

// CreateUser operation middleware
func (siw *ServerInterfaceWrapper) CreateUser(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateUser)
}

// ListPlans operation middleware
func (siw *ServerInterfaceWrapper) ListPlans(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListPlans)
}

// GetLedger operation middleware
func (siw *ServerInterfaceWrapper) GetLedger(w http.ResponseWriter, r *http.Request) {
	var userId string
	if !siw.pathParam(w, r, "userId", &userId) {
		return
	}
	var params GetLedgerParams
	if !siw.queryParam(w, r, "limit", &params.Limit) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetLedger(w, r, userId, params)
	})
}

// GetLeaderboard operation middleware
func (siw *ServerInterfaceWrapper) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	var timeframe string
	if !siw.pathParam(w, r, "timeframe", &timeframe) {
		return
	}
	var params GetLeaderboardParams
	if !siw.queryParam(w, r, "limit", &params.Limit) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetLeaderboard(w, r, timeframe, params)
	})
}

// GetAdminUser operation middleware
func (siw *ServerInterfaceWrapper) GetAdminUser(w http.ResponseWriter, r *http.Request) {
	var userId string
	if !siw.pathParam(w, r, "userId", &userId) {
		return
	}
	var params GetAdminUserParams
	if !siw.adminParam(w, r, &params.XAdminID) {
		return
	}
	if !siw.queryParam(w, r, "limit", &params.Limit) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetAdminUser(w, r, userId, params)
	})
}

// ListAuditLog operation middleware
func (siw *ServerInterfaceWrapper) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	var params ListAuditLogParams
	if !siw.adminParam(w, r, &params.XAdminID) {
		return
	}
	if !siw.queryParam(w, r, "admin_id", &params.AdminId) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListAuditLog(w, r, params)
	})
}

// ChiServerOptions configures HandlerWithOptions. UserMiddlewares wrap the
// user-facing routes only.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	UserMiddlewares  []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerFromMux creates http.Handler with routing matching the API on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{BaseRouter: r})
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}
	base := options.BaseURL

	r.Group(func(r chi.Router) {
		for _, m := range options.UserMiddlewares {
			r.Use(m)
		}
		r.Post(base+"/users", wrapper.CreateUser)
		r.Get(base+"/users/{userId}", wrapper.userOp(si.GetUser))
		r.Get(base+"/users/{userId}/tasks", wrapper.userOp(si.GetTaskStatus))
		r.Post(base+"/users/{userId}/tasks", wrapper.userOp(si.CompleteTask))
		r.Post(base+"/users/{userId}/withdrawals", wrapper.userOp(si.RequestWithdrawal))
		r.Post(base+"/users/{userId}/bonus/unlock", wrapper.userOp(si.UnlockBonus))
		r.Post(base+"/users/{userId}/kyc", wrapper.userOp(si.SubmitKyc))
		r.Post(base+"/users/{userId}/plan", wrapper.userOp(si.PurchasePlan))
		r.Get(base+"/users/{userId}/ledger", wrapper.GetLedger)
		r.Get(base+"/leaderboard/{timeframe}", wrapper.GetLeaderboard)
		r.Get(base+"/plans", wrapper.ListPlans)
	})
	r.Group(func(r chi.Router) {
		r.Get(base+"/admin/me", wrapper.adminOp(si.GetAdminMe))
		r.Get(base+"/admin/dashboard", wrapper.adminOp(si.GetDashboard))
		r.Get(base+"/admin/withdrawals", wrapper.adminOp(si.ListWithdrawals))
		r.Post(base+"/admin/withdrawals/{requestId}", wrapper.adminPathOp("requestId", si.ProcessWithdrawal))
		r.Get(base+"/admin/kyc", wrapper.adminOp(si.ListPendingKyc))
		r.Post(base+"/admin/kyc/{userId}", wrapper.adminPathOp("userId", si.ReviewKyc))
		r.Get(base+"/admin/users", wrapper.adminOp(si.ListUsers))
		r.Get(base+"/admin/users/{userId}", wrapper.GetAdminUser)
		r.Put(base+"/admin/users/{userId}/status", wrapper.adminPathOp("userId", si.SetUserStatus))
		r.Post(base+"/admin/users/{userId}/adjustments", wrapper.adminPathOp("userId", si.AdjustBalance))
		r.Get(base+"/admin/emergency", wrapper.adminOp(si.GetEmergencyState))
		r.Put(base+"/admin/emergency", wrapper.adminOp(si.ToggleEmergency))
		r.Get(base+"/admin/settings", wrapper.adminOp(si.GetSettings))
		r.Put(base+"/admin/settings", wrapper.adminOp(si.UpdateSettings))
		r.Get(base+"/admin/audit", wrapper.ListAuditLog)
		r.Get(base+"/admin/admins", wrapper.adminOp(si.ListAdmins))
		r.Post(base+"/admin/admins", wrapper.adminOp(si.CreateAdmin))
		r.Delete(base+"/admin/admins/{adminId}", wrapper.adminPathOp("adminId", si.DeleteAdmin))
		r.Post(base+"/admin/leaderboard/{timeframe}/award", wrapper.adminPathOp("timeframe", si.AwardLeaderboard))
	})

	return r
}
