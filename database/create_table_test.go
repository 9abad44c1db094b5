package database

import "testing"

const mysqlCreateTable = "CREATE TABLE `orders` (\n" +
	"  `id` int NOT NULL AUTO_INCREMENT,\n" +
	"  `price` decimal(10,2) NOT NULL DEFAULT '0.00',\n" +
	"  `qty` int NOT NULL,\n" +
	"  `total` decimal(20,2) GENERATED ALWAYS AS ((`price` * `qty`)) VIRTUAL,\n" +
	"  `label` varchar(64) GENERATED ALWAYS AS (concat(_utf8mb4'a)',`id`)) STORED COMMENT 'as (x)',\n" +
	"  PRIMARY KEY (`id`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

const mariaCreateTable = "CREATE TABLE `orders` (\n" +
	"  `id` int(11) NOT NULL,\n" +
	"  `Total` int(11) AS (`id` * 2) PERSISTENT,\n" +
	"  `note` varchar(20) DEFAULT 'alias as (x)'\n" +
	") ENGINE=InnoDB"

func TestExtractGenerationExpression(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		column   string
		expected string
	}{
		{"MySQL virtual", mysqlCreateTable, "total", "(`price` * `qty`)"},
		{"Quoted paren", mysqlCreateTable, "label", "concat(_utf8mb4'a)',`id`)"},
		{"Plain column", mysqlCreateTable, "price", ""},
		{"Missing column", mysqlCreateTable, "nope", ""},
		{"MariaDB persistent", mariaCreateTable, "total", "`id` * 2"},
		{"Default literal", mariaCreateTable, "note", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractGenerationExpression(tt.sql, tt.column)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
