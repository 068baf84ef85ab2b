// Package cis implements the directory service entities register with at
// startup so brokers can discover which datacenters exist without being
// wired to them directly.
package cis

import (
	"github.com/sirupsen/logrus"

	cloudsim "github.com/cloudsim-go/cloudsim"
	"github.com/cloudsim-go/cloudsim/datacenter"
)

// TagListDatacenters asks the directory for every registered datacenter
// id; the reply carries a *DatacenterListReply. Registration itself uses
// datacenter.TagRegisterDatacenter / datacenter.RegisterDatacenterRequest,
// since the Characteristics type they carry is owned by that package.
const TagListDatacenters = 2001

// DatacenterListReply is sent back to a TagListDatacenters requester.
type DatacenterListReply struct {
	DatacenterIDs []int
}

// CloudInformationService is the well-known registry entity: datacenters
// register with it at Start, and any entity can send it a
// TagListDatacenters request to learn which datacenter ids exist.
// DatacenterBroker does not query it; a broker is given its datacenter id
// at construction.
type CloudInformationService struct {
	cloudsim.BaseEntity

	datacenters map[int]datacenter.Characteristics
	log         *logrus.Entry
}

func New(name string) *CloudInformationService {
	return &CloudInformationService{
		BaseEntity:  cloudsim.NewBaseEntity(name),
		datacenters: map[int]datacenter.Characteristics{},
		log:         logrus.WithField("entity", name),
	}
}

func (c *CloudInformationService) Start(eng *cloudsim.Engine) {
	c.log.Info("cloud information service starting")
	eng.Wait(c, nil)
}

func (c *CloudInformationService) Run(eng *cloudsim.Engine) {
	ev := c.EventBuffer()
	if ev == nil {
		eng.Wait(c, nil)
		return
	}

	switch ev.Tag {
	case datacenter.TagRegisterDatacenter:
		if req, ok := ev.Payload.(*datacenter.RegisterDatacenterRequest); ok {
			c.datacenters[req.DatacenterID] = req.Characteristics
			c.log.WithField("datacenter", req.DatacenterID).Debug("datacenter registered")
		}
	case TagListDatacenters:
		ids := make([]int, 0, len(c.datacenters))
		for id := range c.datacenters {
			ids = append(ids, id)
		}
		if err := eng.Schedule(c.ID(), ev.Source, 0, TagListDatacenters, &DatacenterListReply{DatacenterIDs: ids}); err != nil {
			c.log.WithError(err).Warn("failed to reply to datacenter list request")
		}
	default:
		c.log.WithField("tag", ev.Tag).Warn("cis received unrecognized tag")
	}

	eng.Wait(c, nil)
}

func (c *CloudInformationService) Shutdown(_ *cloudsim.Engine) {
	c.log.Info("cloud information service shutting down")
}

// Characteristics returns the registered characteristics for a datacenter
// id, or false if it has not registered.
func (c *CloudInformationService) Characteristics(datacenterID int) (datacenter.Characteristics, bool) {
	ch, ok := c.datacenters[datacenterID]
	return ch, ok
}
