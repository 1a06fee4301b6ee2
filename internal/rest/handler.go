package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/room-service/internal/api"
	"github.com/s21platform/room-service/internal/config"
	"github.com/s21platform/room-service/internal/model"
	"github.com/s21platform/room-service/internal/pkg/tx"
	"github.com/s21platform/room-service/internal/presence"
)

type Handler struct {
	repository       DBRepo
	centrifugeClient CentrifugeClient
	broker           EventBroker
	validator        Validator
	jwtGenerator     JWTGenerator
}

func New(
	repo DBRepo,
	centrifugeClient CentrifugeClient,
	broker EventBroker,
	validator Validator,
	jwtGenerator JWTGenerator,
) *Handler {
	return &Handler{
		repository:       repo,
		centrifugeClient: centrifugeClient,
		broker:           broker,
		validator:        validator,
		jwtGenerator:     jwtGenerator,
	}
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("CreateRoom")

	var req api.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ownerID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get owner ID")
		h.writeError(w, "failed to get owner ID", http.StatusInternalServerError)
		return
	}

	if err := h.validator.ValidateCreateRoom(&req); err != nil {
		logger.Error(fmt.Sprintf("room validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("room validation failed: %v", err), http.StatusBadRequest)
		return
	}

	var roomID string
	err := tx.TxExecute(r.Context(), func(ctx context.Context) error {
		var err error
		roomID, err = h.repository.CreateRoom(ctx, &model.Room{
			OwnerID:  ownerID,
			Name:     req.Name,
			Kind:     req.Kind,
			VideoURL: req.VideoUrl,
		})
		if err != nil {
			logger.Error(fmt.Sprintf("failed to create room: %v", err))
			return err
		}

		// владелец сразу становится участником
		if err := h.repository.AddRoomMember(ctx, roomID, ownerID); err != nil {
			logger.Error(fmt.Sprintf("failed to add owner to room: %v", err))
			return err
		}

		return nil
	})

	if err != nil {
		logger.Error(fmt.Sprintf("failed to complete room creation transaction: %v", err))
		h.writeError(w, fmt.Sprintf("failed to create room: %v", err), http.StatusInternalServerError)
		return
	}

	h.publishEvent(r.Context(), logger, model.MembershipEvent{
		RoomID: roomID,
		UserID: ownerID,
		Type:   model.EventInserted,
	})

	response := api.CreateRoomResponse{
		Id: roomID,
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request, roomId string) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("JoinRoom")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	var room *model.Room
	var joined bool
	err := tx.TxExecute(r.Context(), func(ctx context.Context) error {
		var err error
		room, err = h.repository.GetRoom(ctx, roomId)
		if err != nil {
			return err
		}

		// check-then-insert is not atomic: a concurrent join of the same
		// pair resolves on the store's uniqueness constraint and both
		// callers see success
		isMember, err := h.repository.IsRoomMember(ctx, roomId, userUUID)
		if err != nil {
			return err
		}

		if !isMember {
			if err := h.repository.AddRoomMember(ctx, roomId, userUUID); err != nil {
				return err
			}
			joined = true
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, presence.ErrRoomNotFound) {
			logger.Error(fmt.Sprintf("room %s not found", roomId))
			h.writeError(w, "room not found", http.StatusNotFound)
			return
		}
		logger.Error(fmt.Sprintf("failed to join room: %v", err))
		h.writeError(w, fmt.Sprintf("failed to join room: %v", err), http.StatusInternalServerError)
		return
	}

	if joined {
		h.publishEvent(r.Context(), logger, model.MembershipEvent{
			RoomID: roomId,
			UserID: userUUID,
			Type:   model.EventInserted,
		})
	}

	members, err := h.buildRoster(r.Context(), room)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to fetch roster: %v", err))
		h.writeError(w, fmt.Sprintf("failed to fetch roster: %v", err), http.StatusInternalServerError)
		return
	}

	response := api.JoinRoomResponse{
		RoomId:  room.ID,
		OwnerId: room.OwnerID,
		Kind:    room.Kind,
		Members: members,
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) GetRoomMembers(w http.ResponseWriter, r *http.Request, roomId string) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetRoomMembers")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	isMember, err := h.repository.IsRoomMember(r.Context(), roomId, userUUID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to check room membership: %v", err))
		h.writeError(w, fmt.Sprintf("failed to check room membership: %v", err), http.StatusInternalServerError)
		return
	}

	if !isMember {
		logger.Error("user is not a member of the room")
		h.writeError(w, "user is not a member of the room", http.StatusForbidden)
		return
	}

	room, err := h.repository.GetRoom(r.Context(), roomId)
	if err != nil {
		if errors.Is(err, presence.ErrRoomNotFound) {
			h.writeError(w, "room not found", http.StatusNotFound)
			return
		}
		logger.Error(fmt.Sprintf("failed to get room: %v", err))
		h.writeError(w, fmt.Sprintf("failed to get room: %v", err), http.StatusInternalServerError)
		return
	}

	members, err := h.buildRoster(r.Context(), room)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to fetch roster: %v", err))
		h.writeError(w, fmt.Sprintf("failed to fetch roster: %v", err), http.StatusInternalServerError)
		return
	}

	response := api.GetRoomMembersResponse{
		Members: members,
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request, roomId string) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("LeaveRoom")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	if err := h.repository.RemoveRoomMember(r.Context(), roomId, userUUID); err != nil {
		logger.Error(fmt.Sprintf("failed to leave room: %v", err))
		h.writeError(w, fmt.Sprintf("failed to leave room: %v", err), http.StatusInternalServerError)
		return
	}

	h.publishEvent(r.Context(), logger, model.MembershipEvent{
		RoomID: roomId,
		UserID: userUUID,
		Type:   model.EventDeleted,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) KickMember(w http.ResponseWriter, r *http.Request, roomId string, userId string) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("KickMember")

	actingUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	if err := h.validator.ValidateKickMember(userId); err != nil {
		logger.Error(fmt.Sprintf("kick validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("kick validation failed: %v", err), http.StatusBadRequest)
		return
	}

	room, err := h.repository.GetRoom(r.Context(), roomId)
	if err != nil {
		if errors.Is(err, presence.ErrRoomNotFound) {
			h.writeError(w, "room not found", http.StatusNotFound)
			return
		}
		logger.Error(fmt.Sprintf("failed to get room: %v", err))
		h.writeError(w, fmt.Sprintf("failed to get room: %v", err), http.StatusInternalServerError)
		return
	}

	// authorization happens before any store write
	if actingUUID != room.OwnerID {
		logger.Error(fmt.Sprintf("user %s is not the owner of room %s", actingUUID, roomId))
		h.writeError(w, "only the room owner can kick members", http.StatusForbidden)
		return
	}

	if err := h.repository.RemoveRoomMember(r.Context(), roomId, userId); err != nil {
		logger.Error(fmt.Sprintf("failed to kick member: %v", err))
		h.writeError(w, fmt.Sprintf("failed to kick member: %v", err), http.StatusInternalServerError)
		return
	}

	h.publishEvent(r.Context(), logger, model.MembershipEvent{
		RoomID: roomId,
		UserID: userId,
		Type:   model.EventDeleted,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetMyRooms(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetMyRooms")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	roomIDs, err := h.repository.GetUserRooms(r.Context(), userUUID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to get user rooms: %v", err))
		h.writeError(w, fmt.Sprintf("failed to get user rooms: %v", err), http.StatusInternalServerError)
		return
	}

	response := api.GetMyRoomsResponse{
		RoomIds: roomIDs,
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) GetConnectAccessToken(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetConnectAccessToken")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := h.jwtGenerator.GenerateConnectToken(userUUID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to generate access token: %v", err))
		h.writeError(w, fmt.Sprintf("failed to generate access token: %v", err), http.StatusInternalServerError)
		return
	}

	response := api.GetConnectAccessTokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) GetRoomSubscribeToken(w http.ResponseWriter, r *http.Request, roomId string) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetRoomSubscribeToken")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	isMember, err := h.repository.IsRoomMember(r.Context(), roomId, userUUID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to check room membership: %v", err))
		h.writeError(w, fmt.Sprintf("failed to check room membership: %v", err), http.StatusInternalServerError)
		return
	}

	if !isMember {
		logger.Error("user is not a member of the room")
		h.writeError(w, "user is not a member of the room", http.StatusForbidden)
		return
	}

	token, expiresAt, err := h.jwtGenerator.GenerateSubscribeToken(userUUID, roomId)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to generate subscribe token: %v", err))
		h.writeError(w, fmt.Sprintf("failed to generate subscribe token: %v", err), http.StatusInternalServerError)
		return
	}

	response := api.GetRoomSubscribeTokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Channel:   model.RoomChannel(roomId),
	}

	h.writeJSON(w, response, http.StatusOK)
}

// ----------------------------- helpers -----------------------------

func (h *Handler) buildRoster(ctx context.Context, room *model.Room) ([]api.RoomMember, error) {
	userIDs, err := h.repository.ListRoomMembers(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]model.UserProfile, len(userIDs))
	profileList, err := h.repository.GetUserProfiles(ctx, userIDs)
	if err != nil {
		// missing profiles degrade to placeholders, the roster still ships
		logger := logger_lib.FromContext(ctx, config.KeyLogger)
		logger.Warn(fmt.Sprintf("failed to get user profiles: %v", err))
	} else {
		for _, profile := range profileList {
			profiles[profile.UserID] = profile
		}
	}

	roster := presence.BuildRoster(room.OwnerID, userIDs, profiles)

	members := make([]api.RoomMember, len(roster))
	for i, entry := range roster {
		members[i] = api.RoomMember{
			UserId:    entry.UserID,
			Nickname:  entry.Nickname,
			AvatarUrl: entry.AvatarURL,
			IsOwner:   entry.IsOwner,
		}
	}

	return members, nil
}

func (h *Handler) publishEvent(ctx context.Context, logger logger_lib.LoggerInterface, ev model.MembershipEvent) {
	h.broker.Publish(ev)

	if err := h.centrifugeClient.Publish(ctx, model.RoomChannel(ev.RoomID), ev); err != nil {
		logger.Error(fmt.Sprintf("failed to publish membership event: %v", err))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.Error{Error: message})
}
