package handlers

import (
	"errors"
	"io"
	"net/http"

	"catfish/services"

	"github.com/gin-gonic/gin"
)

const (
	usernameMinLength = 2
	usernameMaxLength = 20
)

type GameHandler struct {
	lobbyService *services.LobbyService
	gameService  *services.GameService
	assetService *services.AssetService
	hub          *services.Hub
}

func NewGameHandler(lobbyService *services.LobbyService, gameService *services.GameService, assetService *services.AssetService, hub *services.Hub) *GameHandler {
	return &GameHandler{
		lobbyService: lobbyService,
		gameService:  gameService,
		assetService: assetService,
		hub:          hub,
	}
}

type playerDataRequest struct {
	Username          string `json:"username" binding:"required"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

func (r *playerDataRequest) validate() bool {
	return len(r.Username) >= usernameMinLength && len(r.Username) <= usernameMaxLength
}

type CreateGameRequest struct {
	GameType   string            `json:"game_type" binding:"required"`
	MinPlayers int               `json:"min_players" binding:"required,min=3"`
	MaxPlayers int               `json:"max_players" binding:"required,max=20"`
	PlayerData playerDataRequest `json:"player_data" binding:"required"`
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	uid := c.GetString("uid")

	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.PlayerData.validate() || req.MinPlayers > req.MaxPlayers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player data or player limits"})
		return
	}

	result, err := h.lobbyService.CreateGame(c.Request.Context(), uid, req.GameType, services.PlayerData{
		Username:          req.PlayerData.Username,
		ProfilePictureURL: req.PlayerData.ProfilePictureURL,
	}, req.MinPlayers, req.MaxPlayers)
	if err != nil {
		respondError(c, "create-game", err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

type JoinGameRequest struct {
	GameCode   string            `json:"game_code" binding:"required"`
	PlayerData playerDataRequest `json:"player_data" binding:"required"`
}

func (h *GameHandler) JoinGame(c *gin.Context) {
	uid := c.GetString("uid")

	var req JoinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.PlayerData.validate() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player data"})
		return
	}

	result, err := h.lobbyService.JoinGame(c.Request.Context(), req.GameCode, uid, services.PlayerData{
		Username:          req.PlayerData.Username,
		ProfilePictureURL: req.PlayerData.ProfilePictureURL,
	})
	if err != nil {
		respondError(c, "join-game", err)
		return
	}

	h.hub.NotifyGame(result.GameID, "player_joined", gin.H{"uid": uid})
	c.JSON(http.StatusOK, result)
}

type LeaveGameRequest struct {
	// Defaults to the caller; hosts may name another player to kick.
	TargetUID string `json:"target_uid"`
}

func (h *GameHandler) LeaveGame(c *gin.Context) {
	uid := c.GetString("uid")
	gameID := c.Param("id")

	// Body is optional: a bare POST means self-leave.
	var req LeaveGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	targetUID := req.TargetUID
	if targetUID == "" {
		targetUID = uid
	}

	result, err := h.lobbyService.RemovePlayer(c.Request.Context(), gameID, targetUID, uid)
	if err != nil {
		respondError(c, "leave-game", err)
		return
	}

	if result.GameDeleted {
		h.hub.NotifyGame(gameID, "game_deleted", gin.H{"affected_uids": result.AffectedUIDs})
	} else {
		h.hub.NotifyGame(gameID, "player_left", gin.H{"uid": targetUID})
	}
	c.JSON(http.StatusOK, result)
}

func (h *GameHandler) StartGame(c *gin.Context) {
	uid := c.GetString("uid")
	gameID := c.Param("id")

	game, err := h.gameService.StartGame(c.Request.Context(), gameID, uid)
	if err != nil {
		respondError(c, "start-game", err)
		return
	}

	h.hub.NotifyGame(gameID, "game_started", nil)
	c.JSON(http.StatusOK, game.ClientView())
}

func (h *GameHandler) AdvancePhase(c *gin.Context) {
	uid := c.GetString("uid")
	gameID := c.Param("id")

	game, err := h.gameService.AdvancePhase(c.Request.Context(), gameID, uid)
	if err != nil {
		respondError(c, "advance-phase", err)
		return
	}

	h.hub.NotifyGame(gameID, "phase_advanced", gin.H{
		"current_phase_index": game.CurrentPhaseIndex,
		"status":              game.Status,
	})
	c.JSON(http.StatusOK, game.ClientView())
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

func (h *GameHandler) SubmitAnswer(c *gin.Context) {
	uid := c.GetString("uid")
	gameID := c.Param("id")

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.gameService.SubmitAnswer(c.Request.Context(), gameID, uid, req.Answer)
	if err != nil {
		respondError(c, "submit-answer", err)
		return
	}

	h.hub.NotifyGame(gameID, "answer_submitted", gin.H{
		"current_phase_index": game.CurrentPhaseIndex,
		"status":              game.Status,
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) GetGame(c *gin.Context) {
	gameID := c.Param("id")

	game, err := h.gameService.GetGame(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, "get-game", err)
		return
	}

	c.JSON(http.StatusOK, game.ClientView())
}

// UploadProfilePicture stores the image and patches the player's URL in
// the game document. The blob write is not transactional with the game;
// only the URL patch is.
func (h *GameHandler) UploadProfilePicture(c *gin.Context) {
	uid := c.GetString("uid")
	gameID := c.Param("id")

	file, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Picture file required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read picture"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read picture"})
		return
	}

	url, err := h.assetService.SaveProfilePicture(uid, data, file.Header.Get("Content-Type"))
	if err != nil {
		if err == services.ErrUnsupportedImageType {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
			return
		}
		respondError(c, "upload-profile-picture", err)
		return
	}

	if err := h.lobbyService.SetProfilePicture(c.Request.Context(), gameID, uid, url); err != nil {
		respondError(c, "upload-profile-picture", err)
		return
	}

	h.hub.NotifyGame(gameID, "player_updated", gin.H{"uid": uid})
	c.JSON(http.StatusOK, gin.H{"profile_picture_url": url})
}
