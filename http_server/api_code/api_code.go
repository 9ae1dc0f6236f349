package api_code

type ApiCode = int

const (
	ApiCodeSuccess        ApiCode = 0
	ApiCodeError500       ApiCode = 500
	ApiCodeParamsInvalid  ApiCode = 10000
	ApiCodeMethodNotExist ApiCode = 10001
	ApiCodeDbError        ApiCode = 10002
	ApiCodeCacheError     ApiCode = 10003

	ApiCodeTransactionNotExist       ApiCode = 11001
	ApiCodeTransactionTerminal       ApiCode = 11002
	ApiCodeChainNotSupported         ApiCode = 11003
	ApiCodeAccountNotExist           ApiCode = 30003
	ApiCodePermissionDenied          ApiCode = 30011
	ApiCodeDistributedLockPreemption ApiCode = 40009
)

type ApiResp struct {
	ErrNo  ApiCode     `json:"err_no"`
	ErrMsg string      `json:"err_msg"`
	Data   interface{} `json:"data"`
}

func (a *ApiResp) ApiRespErr(errNo ApiCode, errMsg string) {
	a.ErrNo = errNo
	a.ErrMsg = errMsg
}

func (a *ApiResp) ApiRespOK(data interface{}) {
	a.ErrNo = ApiCodeSuccess
	a.Data = data
}

func ApiRespErr(errNo ApiCode, errMsg string) ApiResp {
	return ApiResp{ErrNo: errNo, ErrMsg: errMsg}
}
