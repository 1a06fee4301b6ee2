package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the room API onto the router.
func RegisterRoutes(router chi.Router, h *Handler) {
	router.Route("/api/room", func(r chi.Router) {
		r.Post("/", h.CreateRoom)
		r.Get("/my", h.GetMyRooms)
		r.Get("/access-token", h.GetConnectAccessToken)

		r.Route("/{room_id}", func(r chi.Router) {
			r.Post("/join", func(w http.ResponseWriter, req *http.Request) {
				h.JoinRoom(w, req, chi.URLParam(req, "room_id"))
			})
			r.Get("/members", func(w http.ResponseWriter, req *http.Request) {
				h.GetRoomMembers(w, req, chi.URLParam(req, "room_id"))
			})
			r.Delete("/members/me", func(w http.ResponseWriter, req *http.Request) {
				h.LeaveRoom(w, req, chi.URLParam(req, "room_id"))
			})
			r.Delete("/members/{user_id}", func(w http.ResponseWriter, req *http.Request) {
				h.KickMember(w, req, chi.URLParam(req, "room_id"), chi.URLParam(req, "user_id"))
			})
			r.Get("/subscribe-token", func(w http.ResponseWriter, req *http.Request) {
				h.GetRoomSubscribeToken(w, req, chi.URLParam(req, "room_id"))
			})
		})
	})
}
