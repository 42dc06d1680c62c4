package main

// 引入采集平台插件，触发各平台的 init() 完成注册
import (
	_ "github.com/fleetcollector/fleetcollector/addone/collect/platforms/huawei_ce"
	_ "github.com/fleetcollector/fleetcollector/addone/collect/platforms/huawei_s"
)
