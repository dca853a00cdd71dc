package relayer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/calehh/contest-app/contest"
	"github.com/calehh/contest-app/types"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const defaultPageSize = 20

// Service exposes the relayer's fulfilment log and read-only contest views
// backed by ABCI queries.
type Service struct {
	engine     *gin.Engine
	relayer    *Relayer
	listenAddr string
}

func NewService(listenAddr string, relayer *Relayer) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		relayer:    relayer,
		listenAddr: listenAddr,
	}
	s.engine.GET("/status", s.handleStatus)
	s.engine.POST("/getFulfilments", s.handleGetFulfilments)
	s.engine.POST("/getContests", s.handleGetContests)
	s.engine.POST("/getContest", s.handleGetContest)
	return s
}

func (s *Service) Start() error {
	return s.engine.Run(s.listenAddr)
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

type StatusResponse struct {
	Height  int64             `json:"height"`
	Account contest.AccountID `json:"account"`
	Nonce   uint64            `json:"nonce"`
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Height:  s.relayer.Height,
		Account: s.relayer.signer.Account(),
		Nonce:   s.relayer.nonce,
	})
}

type GetFulfilmentsReq struct {
	RequestId uint64 `json:"requestId"`
	Status    string `json:"status"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}

type GetFulfilmentsResponse struct {
	Fulfilments []Fulfilment `json:"fulfilments"`
	Total       uint64       `json:"total"`
}

func (s *Service) handleGetFulfilments(c *gin.Context) {
	var response GetFulfilmentsResponse
	response.Fulfilments = make([]Fulfilment, 0)
	var requestData GetFulfilmentsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if requestData.RequestId != 0 {
		f, err := s.relayer.getFulfilment(requestData.RequestId)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, response)
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Fulfilments = append(response.Fulfilments, f)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}
	if requestData.PageSize <= 0 {
		requestData.PageSize = defaultPageSize
	}
	fs, total, err := s.relayer.getFulfilments(requestData.Status, requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Fulfilments = append(response.Fulfilments, fs...)
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetContestsReq struct {
	Creator string `json:"creator"`
}

type GetContestsResponse struct {
	Contests []contest.SessionDetail `json:"contests"`
}

func (s *Service) handleGetContests(c *gin.Context) {
	var requestData GetContestsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var response GetContestsResponse
	response.Contests = make([]contest.SessionDetail, 0)
	if err := s.query(c, types.QueryContests, types.QueryParams{Account: requestData.Creator}, &response.Contests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

type GetContestReq struct {
	Session uint64 `json:"session"`
}

type ContestInfo struct {
	Contest contest.SessionDetail `json:"contest"`
	Arts    []contest.ArtEntry    `json:"arts"`
	Winners []contest.WinnerEntry `json:"winners"`
	Voters  []contest.AccountID   `json:"voters"`
}

func (s *Service) handleGetContest(c *gin.Context) {
	var requestData GetContestReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.Session == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session is required"})
		return
	}
	p := types.QueryParams{Session: requestData.Session}
	var info ContestInfo
	err := s.query(c, types.QueryContest, p, &info.Contest)
	var qerr *QueryError
	if errors.As(err, &qerr) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err == nil {
		err = s.query(c, types.QueryArts, p, &info.Arts)
	}
	if err == nil {
		err = s.query(c, types.QueryWinners, p, &info.Winners)
	}
	if err == nil {
		err = s.query(c, types.QueryVotes, p, &info.Voters)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// QueryError is a query the node answered with a non-zero code.
type QueryError struct {
	Path string
	Code uint32
	Log  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s code=%d: %s", e.Path, e.Code, e.Log)
}

func (s *Service) query(c *gin.Context, path string, p types.QueryParams, v any) error {
	dat, err := json.Marshal(p)
	if err != nil {
		return err
	}
	res, err := s.relayer.cli.ABCIQuery(c.Request.Context(), path, dat)
	if err != nil {
		return err
	}
	if res.Response.Code != 0 {
		return &QueryError{Path: path, Code: res.Response.Code, Log: res.Response.Log}
	}
	return json.Unmarshal(res.Response.Value, v)
}
