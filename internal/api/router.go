package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/metrics"
)

// RouterOptions configure NewRouter.
type RouterOptions struct {
	JWTSecret   []byte
	CORSOrigins []string
	Metrics     *metrics.Metrics
	// Events serves the websocket stream; nil disables the route.
	Events http.Handler
}

// NewRouter wires every route of the dashboard API.
func NewRouter(h *GameHandler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), CORS(opts.CORSOrigins))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET(constants.RouteMetrics, gin.WrapH(opts.Metrics.Handler()))
	}

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RouteHealth, h.Health)
		apiRoutes.GET(constants.RouteVersion, Version)

		protected := apiRoutes.Group("")
		protected.Use(AuthRequired(opts.JWTSecret))

		protected.GET(constants.RouteGames, h.ListGames)
		protected.POST(constants.RouteGames, h.CreateGame)
		protected.GET(constants.RouteGameByRef, h.GetGame)
		protected.PUT(constants.RouteGameByRef, h.UpdateGame)
		protected.DELETE(constants.RouteGameByRef, h.DeleteGame)
		protected.POST(constants.RouteGameExport, h.ExportGame)
		protected.GET(constants.RouteGameNPCLookup, h.LookupNPC)

		protected.GET(constants.RouteAssets, h.ListAssets)
		protected.POST(constants.RouteAssets, h.CreateAsset)
		protected.POST(constants.RouteAssetsCreate, h.CreateAsset)
		protected.GET(constants.RouteGameAsset, h.GetAsset)
		protected.PUT(constants.RouteGameAsset, h.UpdateAsset)
		protected.DELETE(constants.RouteGameAsset, h.DeleteAsset)
		protected.GET(constants.RouteGameAssetThumb, h.AssetThumbnail)
		protected.POST(constants.RouteGameDescribe, h.DescribeAssets)

		protected.GET(constants.RouteNPCs, h.ListNPCs)
		protected.POST(constants.RouteNPCs, h.CreateNPC)
		protected.GET(constants.RouteNPCByID, h.GetNPC)
		protected.PUT(constants.RouteNPCByID, h.UpdateNPC)
		protected.DELETE(constants.RouteNPCByID, h.DeleteNPC)

		protected.GET(constants.RoutePlayers, h.ListPlayers)
		protected.GET(constants.RoutePlayerByID, h.GetPlayer)
		protected.PUT(constants.RoutePlayerByID, h.UpsertPlayer)
		protected.POST(constants.RoutePlayerByID, h.UpsertPlayer)
		protected.DELETE(constants.RoutePlayerByID, h.DeletePlayer)

		if opts.Events != nil {
			protected.GET(constants.RouteEvents, gin.WrapH(opts.Events))
		}
	}
	return router
}
