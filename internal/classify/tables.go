package classify

// Default keyword tables. Matching is a case-sensitive substring test over
// "title description", so single-character administrative terms such as 省
// or 市 match anywhere in the text.

var domesticKeywords = []string{
	"全国", "中国", "国内", "我国", "中央", "国务院", "人大", "政协",
	"省", "市", "县", "乡", "村", "纪检", "监察", "党", "习近平",
	"两会", "全国人大", "政府工作", "发改委", "财政部",
}

var internationalKeywords = []string{
	// regions
	"欧洲", "亚洲", "非洲", "美洲", "大洋洲", "中东", "东南亚", "南亚", "拉美",
	// countries
	"美国", "韩国", "日本", "俄罗斯", "英国", "法国", "德国", "印度", "巴西",
	"澳大利亚", "加拿大", "意大利", "西班牙", "叙利亚", "伊朗", "伊拉克",
	"阿富汗", "巴基斯坦", "以色列", "巴勒斯坦", "乌克兰", "朝鲜", "越南",
	"泰国", "新加坡", "马来西亚", "印尼", "菲律宾", "墨西哥", "阿根廷",
	// groupings and organizations
	"八国", "七国", "二十国", "G7", "G20", "联合国", "北约", "欧盟",
	"世贸", "NATO", "UN", "WHO", "IMF", "世界银行",
	// leaders
	"特朗普", "拜登", "普京", "泽连斯基", "金正恩", "马克龙", "朔尔茨",
	// military and conflict
	"F-15", "F-16", "战机", "空袭", "军事", "美军", "俄军", "北约军",
	// foreign cities
	"阿勒颇", "大马士革", "基辅", "莫斯科", "华盛顿", "东京", "首尔",
	// trade
	"关税", "贸易战", "制裁", "禁运",
}

var techKeywords = []string{
	"科技", "人工智能", "AI", "大模型", "芯片", "半导体", "算法", "量子",
	"机器人", "互联网", "软件", "操作系统", "数据中心", "云计算", "5G",
	"手机", "新能源汽车", "自动驾驶", "卫星", "航天",
	"华为", "小米", "腾讯", "阿里巴巴", "百度", "字节跳动", "苹果", "谷歌",
	"微软", "英伟达", "特斯拉", "OpenAI", "iPhone", "Android",
}

// DefaultTables returns the built-in tables. The tech table is only present
// in the three-category variant.
func DefaultTables(withTech bool) Tables {
	t := Tables{
		Domestic:      append([]string(nil), domesticKeywords...),
		International: append([]string(nil), internationalKeywords...),
	}
	if withTech {
		t.Tech = append([]string(nil), techKeywords...)
	}
	return t
}
