package apiserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"autoscaler/object"
	"autoscaler/pkg/applications"
	"autoscaler/pkg/consumer"
	"autoscaler/pkg/klog"
	"autoscaler/pkg/manager"
)

const secretHeader = "secret"

// NameResolver asks the scaling engine for the name of a resource.
type NameResolver interface {
	ResolveName(resourceId string, bindingContext map[string]string) (string, error)
}

// Server is the management API handling bindings and unbindings.
type Server struct {
	engine  *gin.Engine
	port    int
	secret  string
	manager *manager.ScalableAppManager

	nameResolver           NameResolver
	updateAppNameAtBinding bool
	instanceCounts         *consumer.InstanceCountTracker
}

func NewServer(port int, secret string, appManager *manager.ScalableAppManager,
	nameResolver NameResolver, updateAppNameAtBinding bool,
	instanceCounts *consumer.InstanceCountTracker) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	s := &Server{
		engine:                 engine,
		port:                   port,
		secret:                 secret,
		manager:                appManager,
		nameResolver:           nameResolver,
		updateAppNameAtBinding: updateAppNameAtBinding,
		instanceCounts:         instanceCounts,
	}

	engine.Use(s.recover)
	{
		engine.POST("/bindings", s.checkSecret, s.bindApp)
		engine.DELETE("/bindings/:appId", s.checkSecret, s.unbindApp)
		engine.GET("/bindings", s.checkSecret, s.listBindings)
		engine.GET("/bindings/serviceInstance/:serviceId", s.checkSecret, s.listBindingsForService)
	}
	return s
}

func (s *Server) Run() error {
	return s.engine.Run(fmt.Sprintf(":%d", s.port))
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// recover turns a panicking handler into a 500. An abandoned handler may
// have skipped a Release on an app mutex, which would starve the
// periodic loops; handlers must release on every exit path.
func (s *Server) recover(ctx *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			klog.Warnf("Server : recovered from a panic in a handler : %v\n", r)
			ctx.AbortWithStatusJSON(http.StatusInternalServerError,
				object.ErrorMessage{Error: fmt.Sprintf("%v", r)})
		}
	}()
	ctx.Next()
}

func (s *Server) checkSecret(ctx *gin.Context) {
	if ctx.GetHeader(secretHeader) != s.secret {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{})
	}
}

func (s *Server) bindApp(ctx *gin.Context) {
	binding := &object.Binding{}
	if err := ctx.ShouldBindJSON(binding); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, object.ErrorMessage{Error: err.Error()})
		return
	}
	if err := applications.ValidateBinding(binding); err != nil {
		ctx.JSON(http.StatusBadRequest, object.ErrorMessage{Error: err.Error()})
		return
	}

	klog.Infof("Server : trying to create a new binding for %s\n", binding.IdentifierString())
	newApp := s.manager.NewApp(binding)
	if existing := s.manager.Get(binding.Id); existing != nil {
		if existing.Binding().Equals(binding) {
			klog.Infof("Server : found an identical binding\n")
			ctx.JSON(http.StatusOK, gin.H{})
			return
		}
		klog.Infof("Server : found a binding in conflict with the newly requested\n")
		ctx.JSON(http.StatusConflict, object.ErrorMessage{Error: "An other binding was found with the same id."})
		return
	}
	if s.manager.ContainsResourceId(binding.ResourceId) {
		klog.Infof("Server : found a binding with the same resource id as the newly requested\n")
		ctx.JSON(http.StatusConflict, object.ErrorMessage{Error: "An other binding was found with the same resource id."})
		return
	}

	if s.updateAppNameAtBinding && s.nameResolver != nil {
		name, err := s.nameResolver.ResolveName(binding.ResourceId, binding.Context)
		if err != nil {
			klog.Errorf("Server : error resolving name for %s : %s\n", binding.ResourceId, err.Error())
		} else {
			binding.ResourceName = name
		}
	}
	// the app is not registered yet, no other goroutine can hold it
	if s.instanceCounts != nil {
		if count, ok := s.instanceCounts.LastKnown(binding.ResourceId); ok {
			newApp.SetCurrentInstanceCount(count)
		}
	}

	responseApp, err := newApp.ResponseApplicationWithLock(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, object.ErrorMessage{Error: err.Error()})
		return
	}
	s.manager.Add(newApp, false)
	klog.Infof("Server : new binding created for %s\n", newApp.IdentifierString())
	ctx.JSON(http.StatusCreated, responseApp)
}

func (s *Server) unbindApp(ctx *gin.Context) {
	appId := ctx.Param("appId")
	app := s.manager.Get(appId)
	if s.manager.RemoveById(appId) {
		if s.instanceCounts != nil && app != nil {
			s.instanceCounts.Forget(app.Binding().ResourceId)
		}
		ctx.JSON(http.StatusOK, gin.H{})
		return
	}
	ctx.JSON(http.StatusGone, gin.H{})
}

func (s *Server) listBindings(ctx *gin.Context) {
	bindings := s.manager.GetListOfBindings(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"bindings": bindings})
}

func (s *Server) listBindingsForService(ctx *gin.Context) {
	serviceId := ctx.Param("serviceId")
	bindings := make([]*object.Binding, 0)
	for _, binding := range s.manager.GetListOfBindings(ctx.Request.Context()) {
		if binding.ServiceId == serviceId {
			bindings = append(bindings, binding)
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"bindings": bindings})
}
